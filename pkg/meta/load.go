package meta

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const optionsKey = "_options"

type rawNode struct {
	Type     string         `yaml:"type"`
	Attr     map[string]any `yaml:"attr"`
	Text     *string        `yaml:"text"`
	Key      string         `yaml:"key"`
	Items    []rawNode      `yaml:"items"`
	Required bool           `yaml:"required"`
	SubType  string         `yaml:"subType"`
	Level    int            `yaml:"level"`
	Ref      string         `yaml:"ref"`
	ChkFn    string         `yaml:"chkFn"`
	ErrMsgFn string         `yaml:"errMsgFn"`
}

// Load reads a JSON or YAML metadata document from r.
func Load(r io.Reader) (*Document, error) {
	if r == nil {
		return nil, fmt.Errorf("meta: reader is required")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("meta: read document: %w", err)
	}
	return Parse(data, "document")
}

// LoadFile reads a metadata document from disk.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("meta: read %s: %w", path, err)
	}
	return Parse(data, path)
}

// LoadFS reads a metadata document from fsys.
func LoadFS(fsys fs.FS, name string) (*Document, error) {
	if fsys == nil {
		return nil, fmt.Errorf("meta: filesystem is required")
	}
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("meta: read %s: %w", name, err)
	}
	return Parse(data, name)
}

// Parse decodes a JSON or YAML document. The top level must be a mapping of
// root names to nodes; the reserved `_options` entry carries rendering
// defaults.
func Parse(data []byte, source string) (*Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("meta: %s is empty", source)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("meta: parse %s: %w", source, err)
	}
	top := &root
	if top.Kind == yaml.DocumentNode && len(top.Content) > 0 {
		top = top.Content[0]
	}
	if top.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("meta: %s: top level must be a mapping", source)
	}

	var (
		options Options
		names   []string
		roots   = make(map[string]Node, len(top.Content)/2)
	)
	for i := 0; i+1 < len(top.Content); i += 2 {
		name := strings.TrimSpace(top.Content[i].Value)
		value := top.Content[i+1]
		if name == "" {
			return nil, fmt.Errorf("meta: %s: empty root name at line %d", source, top.Content[i].Line)
		}
		if name == optionsKey {
			if err := value.Decode(&options); err != nil {
				return nil, fmt.Errorf("meta: %s: decode %s: %w", source, optionsKey, err)
			}
			continue
		}
		if _, dup := roots[name]; dup {
			return nil, fmt.Errorf("meta: %s: duplicate root %q", source, name)
		}

		var raw rawNode
		if err := value.Decode(&raw); err != nil {
			return nil, fmt.Errorf("meta: %s: decode %q: %w", source, name, err)
		}
		node, err := convert(raw, Path{name})
		if err != nil {
			return nil, fmt.Errorf("meta: %s: %w", source, err)
		}
		roots[name] = node
		names = append(names, name)
	}

	return NewDocument(roots, names, options), nil
}

func convert(raw rawNode, at Path) (Node, error) {
	attrs := convertAttrs(raw.Attr)
	kind, known := ParseKind(raw.Type)
	if !known {
		items, err := convertItems(raw.Items, at)
		if err != nil {
			return nil, err
		}
		return &Unknown{Type: strings.TrimSpace(raw.Type), Attr: attrs, Items: items}, nil
	}

	field := Field{
		Text:     cleanText(deref(raw.Text)),
		Required: raw.Required,
		Check:    strings.TrimSpace(raw.ChkFn),
		ErrMsg:   strings.TrimSpace(raw.ErrMsgFn),
	}

	switch kind {
	case KindForm, KindPara, KindBlock:
		items, err := convertItems(raw.Items, at)
		if err != nil {
			return nil, err
		}
		switch kind {
		case KindForm:
			return &Form{Attr: attrs, Items: items}, nil
		case KindPara:
			return &Para{Attr: attrs, Items: items}, nil
		default:
			return &Block{Attr: attrs, Items: items}, nil
		}
	case KindSegment:
		items, err := convertItems(raw.Items, at)
		if err != nil {
			return nil, err
		}
		segment := &Segment{Attr: attrs, Items: items}
		if raw.Text != nil {
			text := cleanText(*raw.Text)
			segment.Text = &text
		}
		return segment, nil
	case KindHeader:
		return &Header{Attr: attrs, Text: field.Text, Level: raw.Level}, nil
	case KindLink:
		return &Link{Attr: attrs, Text: field.Text, Ref: strings.TrimSpace(raw.Ref)}, nil
	case KindSubmit:
		return &Submit{Attr: attrs, Text: field.Text}, nil
	case KindInput:
		return &Input{Field: field, Attr: attrs, SubType: strings.TrimSpace(raw.SubType)}, nil
	case KindUniSelect, KindMultiSelect:
		options := make([]Option, 0, len(raw.Items))
		for i, item := range raw.Items {
			key := strings.TrimSpace(item.Key)
			text := cleanText(deref(item.Text))
			if key == "" {
				key = text
			}
			if key == "" {
				return nil, fmt.Errorf("%s: option %d has neither key nor text", at.ID(), i)
			}
			options = append(options, Option{Key: key, Text: text})
		}
		return &Choice{Field: field, Attr: attrs, Multiple: kind == KindMultiSelect, Options: options}, nil
	}
	return nil, fmt.Errorf("%s: unhandled kind %q", at.ID(), kind)
}

func convertItems(raw []rawNode, at Path) ([]Node, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	items := make([]Node, 0, len(raw))
	for i, item := range raw {
		node, err := convert(item, at.Item(i))
		if err != nil {
			return nil, err
		}
		items = append(items, node)
	}
	return items, nil
}

func convertAttrs(raw map[string]any) Attrs {
	if len(raw) == 0 {
		return Attrs{}
	}
	attrs := make(Attrs, len(raw))
	for key, value := range raw {
		name := strings.TrimSpace(key)
		if name == "" || value == nil {
			continue
		}
		attrs[name] = fmt.Sprint(value)
	}
	return attrs
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
