package meta

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// SegmentSelf is the identity navigation token.
	SegmentSelf = "."
	// SegmentParent drops the previous segment; it is a no-op at the root.
	SegmentParent = ".."
	// SegmentItems selects a node's ordered children.
	SegmentItems = "items"
)

// Path addresses a node as a sequence of segments. Integer segments are
// stored in their decimal form.
type Path []string

// PathOf builds a path from string and integer segments.
func PathOf(segments ...any) Path {
	return Path(nil).Append(segments...)
}

// Append returns a new path with segments added; p is never modified.
func (p Path) Append(segments ...any) Path {
	out := make(Path, len(p), len(p)+len(segments))
	copy(out, p)
	for _, segment := range segments {
		switch v := segment.(type) {
		case string:
			out = append(out, v)
		case int:
			out = append(out, strconv.Itoa(v))
		default:
			out = append(out, fmt.Sprint(v))
		}
	}
	return out
}

// Item returns the path of the i-th child of p.
func (p Path) Item(i int) Path {
	return p.Append(SegmentItems, i)
}

// Parent returns p with a trailing parent token.
func (p Path) Parent() Path {
	return p.Append(SegmentParent)
}

// Normalize resolves `.` and `..` tokens left to right. Popping past the root
// leaves the path empty.
func (p Path) Normalize() Path {
	out := make(Path, 0, len(p))
	for _, segment := range p {
		switch segment {
		case SegmentSelf:
		case SegmentParent:
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
		default:
			out = append(out, segment)
		}
	}
	return out
}

// ID joins the raw segments into the identifier used for element ids and
// label linkage. No normalization is applied.
func (p Path) ID() string {
	return "/" + strings.Join(p, "/")
}

// String implements fmt.Stringer.
func (p Path) String() string {
	return p.ID()
}

// ParsePath splits an identifier produced by Path.ID back into segments.
func ParsePath(id string) Path {
	trimmed := strings.Trim(strings.TrimSpace(id), "/")
	if trimmed == "" {
		return Path{}
	}
	return Path(strings.Split(trimmed, "/"))
}

// Resolve returns the node addressed by path. The first normalized segment
// names a top-level node; every following pair must be `items/<index>`.
// Anything else, including the empty path, reports false.
func (d *Document) Resolve(path Path) (Node, bool) {
	if d == nil {
		return nil, false
	}
	normalized := path.Normalize()
	if len(normalized) == 0 {
		return nil, false
	}

	current, ok := d.roots[normalized[0]]
	if !ok {
		return nil, false
	}
	rest := normalized[1:]
	for len(rest) > 0 {
		if rest[0] != SegmentItems || len(rest) < 2 {
			return nil, false
		}
		index, err := strconv.Atoi(rest[1])
		if err != nil {
			return nil, false
		}
		children := current.Children()
		if index < 0 || index >= len(children) || children[index] == nil {
			return nil, false
		}
		current = children[index]
		rest = rest[2:]
	}
	return current, true
}
