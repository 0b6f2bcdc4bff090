package exporter

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// FileKind is the type of an emitted file, named as on the wire.
type FileKind string

// File kinds.
const (
	KindInline     FileKind = "string"
	KindCopyLocal  FileKind = "copy_file"
	KindCopyRemote FileKind = "copy_file_remote"
)

// EmittedFile is one output unit declared by an exporter. Path is slash-separated
// and relative to the output root. Content holds inline data; Source holds the
// local path (KindCopyLocal) or URL (KindCopyRemote).
type EmittedFile struct {
	Path    string
	Kind    FileKind
	Content []byte
	Source  string
}

// InlineFile returns a text file with the given content.
func InlineFile(path, content string) EmittedFile {
	return EmittedFile{Path: path, Kind: KindInline, Content: []byte(content)}
}

// BinaryFile returns an inline file with binary content.
func BinaryFile(path string, content []byte) EmittedFile {
	return EmittedFile{Path: path, Kind: KindInline, Content: content}
}

// LocalCopy returns a file whose content is copied from a local source file.
func LocalCopy(path, source string) EmittedFile {
	return EmittedFile{Path: path, Kind: KindCopyLocal, Source: source}
}

// RemoteCopy returns a file whose content is downloaded from url.
func RemoteCopy(path, url string) EmittedFile {
	return EmittedFile{Path: path, Kind: KindCopyRemote, Source: url}
}

// Validate checks the shape of the file. Destination safety is checked separately
// by the materializer against the actual output root.
func (f EmittedFile) Validate() error {
	if f.Path == "" {
		return fmt.Errorf("emitted file has an empty path")
	}
	switch f.Kind {
	case KindInline:
		return nil
	case KindCopyLocal, KindCopyRemote:
		if f.Source == "" {
			return fmt.Errorf("emitted file %s of type %s has no source", f.Path, f.Kind)
		}
		return nil
	default:
		return fmt.Errorf("emitted file %s has unknown type %q", f.Path, f.Kind)
	}
}

// wireFile is the JSON shape of an emitted file in the process plugin protocol.
type wireFile struct {
	Path     string   `json:"path"`
	Type     FileKind `json:"type"`
	Content  *string  `json:"content"`
	Encoding string   `json:"encoding,omitempty"`
}

// UnmarshalJSON decodes the wire shape. Inline content may be base64 encoded by
// setting "encoding": "base64".
func (f *EmittedFile) UnmarshalJSON(data []byte) error {
	var w wireFile
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Content == nil {
		return fmt.Errorf("emitted file %q has no content", w.Path)
	}

	out := EmittedFile{Path: w.Path, Kind: w.Type}
	switch w.Type {
	case KindInline:
		switch w.Encoding {
		case "", "utf8", "utf-8":
			out.Content = []byte(*w.Content)
		case "base64":
			b, err := base64.StdEncoding.DecodeString(*w.Content)
			if err != nil {
				return fmt.Errorf("emitted file %q: invalid base64 content: %w", w.Path, err)
			}
			out.Content = b
		default:
			return fmt.Errorf("emitted file %q: unknown encoding %q", w.Path, w.Encoding)
		}
	default:
		out.Source = *w.Content
	}

	if err := out.Validate(); err != nil {
		return err
	}
	*f = out
	return nil
}

// MarshalJSON encodes the file in its wire shape. Inline content is always sent
// base64 encoded so binary data survives the round trip.
func (f EmittedFile) MarshalJSON() ([]byte, error) {
	w := wireFile{Path: f.Path, Type: f.Kind}
	if f.Kind == KindInline {
		s := base64.StdEncoding.EncodeToString(f.Content)
		w.Content = &s
		w.Encoding = "base64"
	} else {
		s := f.Source
		w.Content = &s
	}
	return json.Marshal(w)
}
