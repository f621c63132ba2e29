package export

import (
	"encoding/json"
	"os"
)

// docxSource is the body of a DOCX export: the unsubstituted template content
// and the submitted data, as JSON.
type docxSource struct {
	Template string         `json:"template"`
	Data     map[string]any `json:"data"`
}

func writeDOCX(path string, doc Document) error {
	raw, err := json.Marshal(docxSource{Template: doc.Content, Data: doc.Data})
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}
