package shared

import (
	"bytes"
	_ "embed"

	"github.com/charmbracelet/log"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

var (
	// Config manager
	Koanf *koanf.Koanf
)

//go:embed config/default.json
var defaultConfig []byte

// Takes the bytes of a JSON document and removes its comment lines (lines starting with //)
func StripCommentsFromJSON(fileContent []byte) []byte {
	lines := bytes.Split(fileContent, []byte("\n"))
	var filteredLines [][]byte

	for _, line := range lines {
		trimmedLine := bytes.TrimSpace(line)
		if !bytes.HasPrefix(trimmedLine, []byte("//")) {
			filteredLines = append(filteredLines, line)
		}
	}

	return bytes.Join(filteredLines, []byte("\n"))
}

// Loads the default config. Must run before LoadUserConfig, user values are layered on top.
func LoadDefaultConfig() error {
	Koanf = koanf.New(".")

	if err := Koanf.Load(rawbytes.Provider(StripCommentsFromJSON(defaultConfig)), json.Parser()); err != nil {
		return err
	}
	UserLog.Info("Loaded default config.")
	return nil
}

// Loads the user defined config.
func LoadUserConfig(path string) error {
	UserLog.Debugf("Loading configuration at %s", path)
	if Koanf == nil {
		Koanf = koanf.New(".")
	}

	fileContent, err := file.Provider(path).ReadBytes()
	if err != nil {
		return err
	}

	if err := Koanf.Load(rawbytes.Provider(StripCommentsFromJSON(fileContent)), json.Parser()); err != nil {
		return err
	}
	UserLog.Info("Loaded user config file")
	return nil
}

// ConfigString reads a string key, falling back to the embedded defaults when nothing is loaded.
func ConfigString(path string) string {
	ensureConfig()
	return Koanf.String(path)
}

func ConfigInt(path string) int {
	ensureConfig()
	return Koanf.Int(path)
}

func ensureConfig() {
	if Koanf != nil {
		return
	}
	if err := LoadDefaultConfig(); err != nil {
		log.Fatalf("Error loading default config %v", err)
	}
}
