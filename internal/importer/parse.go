package importer

import (
	"encoding/json"

	"github.com/rotisserie/eris"

	"github.com/orbitnotes/orbit-cli/internal/model"
)

// JSONParser reads a batch encoded as a JSON array of parsed contacts.
type JSONParser struct{}

var _ model.Parser = JSONParser{}

func (JSONParser) Parse(data []byte) ([]model.ParsedContact, error) {
	var batch []model.ParsedContact
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, eris.Wrap(err, "importer: parse batch")
	}
	return batch, nil
}
