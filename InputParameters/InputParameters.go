package InputParameters

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ghodss/yaml"
)

// Parameters obtained from the YAML job file
type InputParametersSTL struct {
	Title            string   `yaml:"Title"`
	Files            []string `yaml:"Files"`            // STL files to parse, relative to the job file
	Workers          int      `yaml:"Workers"`          // Decode goroutines per file, 0 = one per CPU
	ProgressInterval int      `yaml:"ProgressInterval"` // Records between progress reports
	Jobs             int      `yaml:"Jobs"`             // Files parsed at the same time, 0 = one
	ExportDir        string   `yaml:"ExportDir"`        // If set, write geometry buffers here
}

func (ip *InputParametersSTL) Parse(data []byte) (err error) {
	if err = yaml.Unmarshal(data, ip); err != nil {
		return
	}
	return ip.Validate()
}

func (ip *InputParametersSTL) Validate() error {
	switch {
	case ip.Workers < 0:
		return fmt.Errorf("Workers must be >= 0, have %d", ip.Workers)
	case ip.ProgressInterval < 0:
		return fmt.Errorf("ProgressInterval must be >= 0, have %d", ip.ProgressInterval)
	case ip.Jobs < 0:
		return fmt.Errorf("Jobs must be >= 0, have %d", ip.Jobs)
	}
	return nil
}

// ReadFile parses a job file and makes relative Files and ExportDir
// relative to the job file's directory
func ReadFile(filename string) (ip *InputParametersSTL, err error) {
	var data []byte
	if data, err = os.ReadFile(filename); err != nil {
		return
	}
	ip = &InputParametersSTL{}
	if err = ip.Parse(data); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	dir := filepath.Dir(filename)
	for i, f := range ip.Files {
		if !filepath.IsAbs(f) {
			ip.Files[i] = filepath.Join(dir, f)
		}
	}
	if ip.ExportDir != "" && !filepath.IsAbs(ip.ExportDir) {
		ip.ExportDir = filepath.Join(dir, ip.ExportDir)
	}
	return
}

func (ip *InputParametersSTL) Print(w io.Writer) {
	fmt.Fprintf(w, "\"%s\"\t\t= Title\n", ip.Title)
	fmt.Fprintf(w, "[%d]\t\t\t= Workers\n", ip.Workers)
	fmt.Fprintf(w, "[%d]\t\t\t= ProgressInterval\n", ip.ProgressInterval)
	fmt.Fprintf(w, "[%d]\t\t\t= Jobs\n", ip.Jobs)
	fmt.Fprintf(w, "[%s]\t\t\t= ExportDir\n", ip.ExportDir)
	for i, f := range ip.Files {
		fmt.Fprintf(w, "Files[%d] = %s\n", i, f)
	}
}
