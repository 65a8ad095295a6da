package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/macropower/folio/api"
	"github.com/macropower/folio/api/v1beta1/configs"
	"github.com/macropower/folio/pkg/yaml"
)

var outFile = flag.String("o", "schema.json", "Output file for the generated schema")

func main() {
	flag.Parse()

	out, err := filepath.Abs(*outFile)
	if err != nil {
		log.Fatalf("resolve output path: %v", err)
	}

	// Go comments are looked up relative to the module root.
	goMod, err := api.FindUp(".", "go.mod")
	if err != nil || goMod == "" {
		log.Fatalf("find module root: %v", err)
	}

	err = os.Chdir(filepath.Dir(goMod))
	if err != nil {
		log.Fatalf("change to module root: %v", err)
	}

	gen := yaml.NewSchemaGenerator(configs.New(), "github.com/macropower/folio",
		"api/v1beta1",
		"api/v1beta1/configs",
		"pkg/configurator",
		"pkg/configurators",
	)

	jsData, err := gen.Generate()
	if err != nil {
		log.Fatalf("generate JSON schema: %v", err)
	}

	err = os.WriteFile(out, jsData, 0o600)
	if err != nil {
		log.Fatalf("write schema file: %v", err)
	}
}
