package main

import (
	"flag"
	"log"

	"github.com/danmuck/steerctl/internal/config"
)

func defaultPath(kind string) string {
	switch kind {
	case "launcher":
		return "cmd/steerctl/config.toml"
	case "tunnel":
		return "cmd/tunnelctl/config.toml"
	case "web":
		return "cmd/webctl/config.toml"
	case "render":
		return "cmd/renderctl/config.toml"
	default:
		return ""
	}
}

func main() {
	kind := flag.String("kind", "launcher", "config kind: launcher|tunnel|web|render")
	output := flag.String("output", "", "output path for config template")
	validate := flag.Bool("validate", false, "validate an existing config file")
	input := flag.String("input", "", "config path for validation (defaults to per-kind cmd path)")
	force := flag.Bool("force", false, "overwrite existing config file")
	flag.Parse()

	if *validate {
		path := *input
		if path == "" {
			path = defaultPath(*kind)
			if path == "" {
				log.Fatalf("unknown kind: %s", *kind)
			}
		}

		var err error
		switch *kind {
		case "launcher":
			_, err = config.LoadLauncherConfig(path)
		case "tunnel":
			_, err = config.LoadTunnelConfig(path)
		case "web":
			_, err = config.LoadWebConfig(path)
		case "render":
			_, err = config.LoadRenderConfig(path)
		default:
			log.Fatalf("unknown kind: %s", *kind)
		}
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("Validated %s config at %s", *kind, path)
		return
	}

	target := *output
	if target == "" {
		target = defaultPath(*kind)
		if target == "" {
			log.Fatalf("unknown kind: %s", *kind)
		}
	}

	if err := config.WriteTemplate(target, *kind, *force); err != nil {
		log.Fatal(err)
	}
	log.Printf("Wrote %s config template to %s", *kind, target)
}
