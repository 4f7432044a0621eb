package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/Masterminds/semver/v3"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// SupportedVersions is the constraint a catalog document's version must meet.
const SupportedVersions = "^1"

const schemaURL = "https://mascot-survey.local/catalog.schema.json"

const schemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["version", "questions"],
  "additionalProperties": false,
  "properties": {
    "version": {"type": "string", "minLength": 1},
    "questions": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "options"],
        "additionalProperties": false,
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "options": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["id"],
              "additionalProperties": false,
              "properties": {
                "id": {"type": "string", "minLength": 1},
                "labels": {
                  "type": "object",
                  "additionalProperties": {"type": "string"}
                }
              }
            }
          }
        }
      }
    }
  }
}`

var schema = compileSchema()

func compileSchema() *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(schemaURL, bytes.NewReader([]byte(schemaJSON))); err != nil {
		panic(err)
	}
	return c.MustCompile(schemaURL)
}

type document struct {
	Version   string `json:"version"`
	Questions []struct {
		ID      string `json:"id"`
		Options []struct {
			ID     string            `json:"id"`
			Labels map[string]string `json:"labels"`
		} `json:"options"`
	} `json:"questions"`
}

// Load reads a YAML catalog document, checks it against the catalog schema and
// version constraint, and builds the Catalog.
//
//	version: "1.0.0"
//	questions:
//	  - id: sales_type
//	    options:
//	      - id: sales_type-man.webp
//	        labels: {nl: Man, en: Man}
func Load(r io.Reader) (*Catalog, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("catalog: read: %w", err)
	}
	var tree any
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return nil, fmt.Errorf("catalog: parse yaml: %w", err)
	}
	// schema validation and struct decoding both work on the JSON form
	js, err := json.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("catalog: convert yaml: %w", err)
	}
	var generic any
	if err := json.Unmarshal(js, &generic); err != nil {
		return nil, fmt.Errorf("catalog: convert yaml: %w", err)
	}
	if err := schema.Validate(generic); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchema, err)
	}

	var doc document
	if err := json.Unmarshal(js, &doc); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}
	if err := checkVersion(doc.Version); err != nil {
		return nil, err
	}

	qs := make([]Question, 0, len(doc.Questions))
	labels := Labels{}
	for _, dq := range doc.Questions {
		q := Question{ID: dq.ID}
		for _, o := range dq.Options {
			q.Options = append(q.Options, o.ID)
			for lang, label := range o.Labels {
				labels[LabelKey{dq.ID, o.ID, lang}] = label
			}
		}
		qs = append(qs, q)
	}
	return New(qs, labels)
}

func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}

func checkVersion(v string) error {
	c, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		return err
	}
	ver, err := semver.NewVersion(v)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrVersion, v, err)
	}
	if !c.Check(ver) {
		return fmt.Errorf("%w: %s does not satisfy %s", ErrVersion, ver, SupportedVersions)
	}
	return nil
}
