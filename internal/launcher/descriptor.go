// Package launcher drives single test invocations: it picks the report
// location, runs the tool through the execution loop, tidies the report folder
// and classifies the outcome.
package launcher

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zinc-sig/ftlaunch/internal/outcome"
)

// Descriptor describes one test to run. Paths are already resolved by the caller.
type Descriptor struct {
	TestPath            string           `json:"test" yaml:"test"`
	TestName            string           `json:"name,omitempty" yaml:"name,omitempty"`
	TestGroup           string           `json:"group,omitempty" yaml:"group,omitempty"`
	Type                outcome.TestType `json:"type" yaml:"type"`
	ReportPath          string           `json:"report,omitempty" yaml:"report,omitempty"`
	ReportBaseDirectory string           `json:"report_base,omitempty" yaml:"report_base,omitempty"`

	// Command overrides the tool binary for the test type.
	Command string   `json:"command,omitempty" yaml:"command,omitempty"`
	Args    []string `json:"args,omitempty" yaml:"args,omitempty"`
	Dir     string   `json:"dir,omitempty" yaml:"dir,omitempty"`
	Env     []string `json:"env,omitempty" yaml:"env,omitempty"`

	InputParamsFile string `json:"input_params,omitempty" yaml:"input_params,omitempty"`
	ConfigFile      string `json:"config,omitempty" yaml:"config,omitempty"`
	Elevated        bool   `json:"elevated,omitempty" yaml:"elevated,omitempty"`
}

// Validate normalises the type tag and checks required fields. An empty type
// means a functional test.
func (d *Descriptor) Validate() error {
	if strings.TrimSpace(d.TestPath) == "" {
		return errors.New("test path is required")
	}
	if d.Type == "" {
		d.Type = outcome.TypeFunctional
	}
	t, ok := outcome.ParseTestType(string(d.Type))
	if !ok {
		return fmt.Errorf("unsupported test type %q", d.Type)
	}
	d.Type = t

	switch t {
	case outcome.TypeParallel:
		if d.ConfigFile == "" {
			return errors.New("parallel tests require a config file")
		}
	case outcome.TypeFunctional, outcome.TypePerformance:
		if d.Command == "" {
			return fmt.Errorf("%s tests require a command", t)
		}
	}
	return nil
}

// ShortName is the last segment of the test name, or of the test path when
// no name is set.
func (d *Descriptor) ShortName() string {
	name := d.TestName
	if name == "" {
		name = d.TestPath
	}
	name = strings.TrimRight(name, `/\`)
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		return name[i+1:]
	}
	return name
}
