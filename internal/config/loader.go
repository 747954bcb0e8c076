package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// FileName is the YAML configuration file looked up by Load.
const FileName = ".hellobench.yaml"

// Loader resolves a Config from every layer. The zero value reads the
// process environment, ./.env and the discovered .hellobench.yaml.
type Loader struct {
	// LookupEnv reads environment variables. Defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)

	// ConfigFile is an explicit YAML path. A missing explicit file is an error.
	ConfigFile string

	// DisableDiscovery skips the search for .hellobench.yaml when
	// ConfigFile is empty.
	DisableDiscovery bool

	// DotEnvFile is read for variables absent from the environment.
	// Defaults to ".env"; a missing file is ignored.
	DotEnvFile string

	// Flags are applied last. Only flags the user changed take effect.
	Flags *pflag.FlagSet
}

// Load reads configuration with the default Loader.
func Load(flags *pflag.FlagSet) (*Config, error) {
	return Loader{Flags: flags}.Load()
}

// Load merges defaults, the environment preset, the YAML file, environment
// variables and CLI flags, in that order, then validates the result.
func (l Loader) Load() (*Config, error) {
	lookup, err := l.lookupFunc()
	if err != nil {
		return nil, err
	}

	fileVals, err := l.readFile()
	if err != nil {
		return nil, err
	}

	envVals := make(map[string]string)
	for _, f := range fields {
		if v, ok := lookup(f.env); ok && v != "" {
			if presenceEnv[f.env] {
				v = "true"
			}
			envVals[f.key] = v
		}
	}

	cliVals := make(map[string]string)
	if l.Flags != nil {
		for _, f := range fields {
			if f.flag == "" || !l.Flags.Changed(f.flag) {
				continue
			}
			cliVals[f.key] = l.Flags.Lookup(f.flag).Value.String()
		}
	}

	c := Default()

	// The preset depends on the environment name, which any layer may set.
	env := EnvDevelopment
	for _, layer := range []map[string]string{fileVals, envVals, cliVals} {
		if v, ok := layer["environment"]; ok {
			env = v
		}
	}
	if err := c.apply("environment", env, SourceDefault); err != nil {
		return nil, err
	}
	if err := c.applyPreset(c.Environment); err != nil {
		return nil, err
	}

	if err := c.applyLayer(fileVals, SourceFile, true); err != nil {
		return nil, err
	}
	// Malformed environment values keep the lower layer's value.
	_ = c.applyLayer(envVals, SourceEnv, false)
	if err := c.applyLayer(cliVals, SourceCLI, true); err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (l Loader) lookupFunc() (func(string) (string, bool), error) {
	lookup := l.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	path := l.DotEnvFile
	if path == "" {
		path = ".env"
	}
	dotenv, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return lookup, nil
		}
		return nil, fmt.Errorf("%w: reading %s: %w", ErrInvalidConfig, path, err)
	}
	return func(key string) (string, bool) {
		if v, ok := lookup(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}, nil
}

// readFile returns the scalar values of the YAML file keyed by field.
func (l Loader) readFile() (map[string]string, error) {
	path := l.ConfigFile
	if path == "" && !l.DisableDiscovery {
		path = getConfigPath()
	}
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrInvalidConfig, path, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %w", ErrInvalidConfig, path, err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: %s: top level must be a mapping", ErrInvalidConfig, path)
	}

	vals := make(map[string]string, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		k, v := root.Content[i], root.Content[i+1]
		if _, ok := lookupField(k.Value); !ok {
			return nil, fmt.Errorf("%w: %s:%d: unknown key %q", ErrInvalidConfig, path, k.Line, k.Value)
		}
		if v.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("%w: %s:%d: %s must be a scalar", ErrInvalidConfig, path, v.Line, k.Value)
		}
		vals[k.Value] = v.Value
	}
	return vals, nil
}

func (c *Config) apply(key, raw string, src Source) error {
	f, ok := lookupField(key)
	if !ok {
		return fmt.Errorf("%w: unknown key %q", ErrInvalidConfig, key)
	}
	if err := f.set(c, raw); err != nil {
		return fmt.Errorf("%w: %s=%q from %s: %w", ErrInvalidConfig, key, raw, src, err)
	}
	c.Sources[key] = src
	return nil
}

func (c *Config) applyPreset(env string) error {
	for key, raw := range presets[env] {
		if err := c.apply(key, raw, SourcePreset); err != nil {
			return err
		}
	}
	return nil
}

// applyLayer applies vals in field order. With strict unset, values that
// fail to parse are skipped and the first error is returned after the
// remaining values are applied.
func (c *Config) applyLayer(vals map[string]string, src Source, strict bool) error {
	var first error
	for _, f := range fields {
		raw, ok := vals[f.key]
		if !ok {
			continue
		}
		if err := c.apply(f.key, raw, src); err != nil {
			if strict {
				return err
			}
			if first == nil {
				first = err
			}
		}
	}
	return first
}

// YAML renders the configuration with each value's source as a line comment.
func (c *Config) YAML() ([]byte, error) {
	var node yaml.Node
	if err := node.Encode(c); err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		node.Content[i+1].LineComment = "source: " + string(c.Source(key))
	}
	out, err := yaml.Marshal(&node)
	if err != nil {
		return nil, fmt.Errorf("marshalling config: %w", err)
	}
	return out, nil
}

// Overrides lists the keys whose value did not come from the defaults,
// sorted by key.
func (c *Config) Overrides() []string {
	var keys []string
	for k, s := range c.Sources {
		if s != SourceDefault {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
