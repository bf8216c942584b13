package agent

import (
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"
)

type templateFile struct {
	Templates []string `yaml:"templates"`
}

// LoadTemplates reads reasoning templates from a YAML file of the form
//
//	templates:
//	  - "Examining the question: %s"
//
// Every template must contain a %s placeholder for the query.
func LoadTemplates(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read template file", goerr.V("path", path))
	}

	var file templateFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(err, "failed to parse template file", goerr.V("path", path))
	}

	if len(file.Templates) == 0 {
		return nil, goerr.New("template file has no templates", goerr.V("path", path))
	}
	for _, tmpl := range file.Templates {
		if !strings.Contains(tmpl, "%s") {
			return nil, goerr.New("template is missing the %s query placeholder", goerr.V("template", tmpl))
		}
	}

	return file.Templates, nil
}
