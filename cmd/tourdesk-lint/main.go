package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-tourforms/pkg/forms"
	"github.com/goliatone/go-tourforms/pkg/model"
	"github.com/goliatone/go-tourforms/pkg/options"
)

type violation struct {
	file     string
	location string
	message  string
}

func main() {
	seedFile := flag.String("options", "", "option seed file used for definitions given as paths")
	flag.Usage = func() {
		if _, err := fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [-options file] [definition.yaml...]\n", filepath.Base(os.Args[0])); err != nil {
			panic(err)
		}
		if _, err := fmt.Fprintf(flag.CommandLine.Output(), "\nLint form definitions for broken rules and choice fields without options.\nWithout paths the built-in screens are checked.\n"); err != nil {
			panic(err)
		}
	}
	flag.Parse()

	var seeds map[string][]string
	if *seedFile != "" {
		loaded, err := options.LoadSeedFile(*seedFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "lint: %v\n", err)
			os.Exit(1)
		}
		seeds = loaded
	}

	var violations []violation
	if paths := flag.Args(); len(paths) > 0 {
		for _, path := range paths {
			linted, err := lintFile(path, seeds)
			if err != nil {
				fmt.Fprintf(os.Stderr, "lint %s: %v\n", path, err)
				os.Exit(1)
			}
			violations = append(violations, linted...)
		}
	} else {
		catalog := forms.NewCatalog()
		for _, def := range catalog.Definitions() {
			violations = append(violations, lintDefinition("builtin:"+def.ID, def, catalog.Seeds(def.ID))...)
		}
	}

	if len(violations) > 0 {
		sort.Slice(violations, func(i, j int) bool {
			if violations[i].file == violations[j].file {
				if violations[i].location == violations[j].location {
					return violations[i].message < violations[j].message
				}
				return violations[i].location < violations[j].location
			}
			return violations[i].file < violations[j].file
		})
		for _, v := range violations {
			fmt.Fprintf(os.Stderr, "%s: %s -> %s\n", v.file, v.location, v.message)
		}
		os.Exit(1)
	}
}

func lintFile(path string, seeds map[string][]string) ([]violation, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	var def model.FormDefinition
	if err := yaml.Unmarshal(raw, &def); err != nil {
		return nil, fmt.Errorf("decode definition: %w", err)
	}
	return lintDefinition(path, def, seeds), nil
}

// lintDefinition reports structural errors and every choice field whose list
// is missing from seeds. Dependent lists are checked per parent option.
func lintDefinition(file string, def model.FormDefinition, seeds map[string][]string) []violation {
	var result []violation
	if err := def.Validate(); err != nil {
		result = append(result, violation{file: file, location: formatLocation([]string{"form", def.ID}), message: err.Error()})
	}

	for _, field := range def.Fields {
		if !field.IsChoice() {
			continue
		}
		location := formatLocation([]string{"form", def.ID, "field", field.Name})
		if field.OptionsBy == "" {
			if _, ok := seeds[field.OptionKey(nil)]; !ok && !field.AllowAdd && !field.Shared {
				result = append(result, violation{file: file, location: location, message: fmt.Sprintf("no option list %q", field.OptionKey(nil))})
			}
			continue
		}

		parent, ok := def.Field(field.OptionsBy)
		if !ok || !parent.IsChoice() {
			continue
		}
		for _, value := range seeds[parent.OptionKey(nil)] {
			key := field.OptionKey(map[string]any{field.OptionsBy: value})
			if _, ok := seeds[key]; !ok && !field.AllowAdd {
				result = append(result, violation{file: file, location: location, message: fmt.Sprintf("no option list %q for %s %q", key, field.OptionsBy, value)})
			}
		}
	}
	return result
}

func formatLocation(path []string) string {
	return strings.Join(path, " > ")
}
