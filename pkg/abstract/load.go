package abstract

import (
	"io"
	"os"
	"regexp"

	"github.com/cockroachdb/errors"
	"github.com/dball/ldapabstract/internal/display"
	"github.com/dball/ldapabstract/internal/sys"
	"github.com/dball/ldapabstract/internal/types"
	"gopkg.in/yaml.v3"
)

type objectDefFile struct {
	ObjectClasses []string      `yaml:"objectClasses"`
	Attributes    []attrDefFile `yaml:"attributes"`
}

type attrDefFile struct {
	Name    string `yaml:"name"`
	Key     string `yaml:"key"`
	Syntax  string `yaml:"syntax"`
	Single  *bool  `yaml:"single"`
	Pattern string `yaml:"pattern"`
}

// LoadObjectDef reads an object definition from YAML:
//
//	objectClasses: [inetOrgPerson]
//	attributes:
//	  - name: cn
//	    key: commonName
//	  - name: employeeNumber
//	    syntax: numericString
//	    single: true
//	    pattern: "^[0-9]{6}$"
//
// Omitted syntaxes and cardinalities default as in NewAttrDef. A pattern must match every
// value, which must be a string.
func LoadObjectDef(r io.Reader) (od *ObjectDef, err error) {
	var file objectDefFile
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err = decoder.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		err = errors.Wrap(err, "parse object definition")
		return
	}
	err = nil
	od = NewObjectDef(file.ObjectClasses...)
	for i, attr := range file.Attributes {
		var def *AttrDef
		def, err = attr.build()
		if err != nil {
			err = errors.Wrapf(err, "attribute %d", i)
			od = nil
			return
		}
		if err = od.Add(def); err != nil {
			od = nil
			return
		}
	}
	return
}

// LoadObjectDefFile reads an object definition from a YAML file.
func LoadObjectDefFile(path string) (od *ObjectDef, err error) {
	f, err := os.Open(path)
	if err != nil {
		err = errors.Wrapf(err, "open object definition %s", path)
		return
	}
	defer f.Close()
	od, err = LoadObjectDef(f)
	return
}

func (attr attrDefFile) build() (def *AttrDef, err error) {
	if attr.Name == "" {
		err = types.NewError("definition.missingName")
		return
	}
	def = NewAttrDef(attr.Name)
	if attr.Key != "" {
		def.WithKey(attr.Key)
	}
	if attr.Syntax != "" {
		syntax, ok := sys.ParseSyntax(attr.Syntax)
		if !ok {
			err = types.NewError("definition.unknownSyntax", "name", attr.Name, "syntax", attr.Syntax)
			return
		}
		def.WithSyntax(syntax)
	}
	if attr.Single != nil {
		def.WithSingleValue(*attr.Single)
	}
	if attr.Pattern != "" {
		pattern, compileErr := regexp.Compile(attr.Pattern)
		if compileErr != nil {
			err = errors.Wrapf(compileErr, "pattern for %s", attr.Name)
			return
		}
		def.WithValidator(patternValidator(def.syntax, def.singleValue, pattern))
	}
	return
}

func patternValidator(syntax Syntax, single bool, pattern *regexp.Regexp) Validator {
	return func(name string, value any) bool {
		values, ok := display.Sequence(value)
		if !ok {
			values = []any{value}
		}
		if single && len(values) > 1 {
			return false
		}
		for _, v := range values {
			s, isString := v.(string)
			if !isString || !sys.ValidValue(syntax, s) || !pattern.MatchString(s) {
				return false
			}
		}
		return true
	}
}
