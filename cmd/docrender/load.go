package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/arafateouronile-glitch/EDUZEN-sub009/pkg/docrender"
)

func loadTemplate(path string) (*docrender.Template, error) {
	var tpl docrender.Template
	if err := decodeFile(path, &tpl); err != nil {
		return nil, errors.Wrap(err, "load template")
	}
	return &tpl, nil
}

func loadVariables(path string) (map[string]any, error) {
	vars := map[string]any{}
	if err := decodeFile(path, &vars); err != nil {
		return nil, errors.Wrap(err, "load variables")
	}
	return vars, nil
}

// decodeFile reads .json with encoding/json and anything else as YAML.
func decodeFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return errors.Wrapf(json.Unmarshal(data, v), "parse %s", path)
	}
	return errors.Wrapf(yaml.Unmarshal(data, v), "parse %s", path)
}

func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return errors.Wrapf(os.WriteFile(path, data, 0o644), "write %s", path)
}
