package assets

import (
	"sort"
)

// Logical names for staged assets.
const (
	NameFont    = "font"
	NameCaption = "caption"
	NameAudio   = "audio"
)

// fileNames maps logical names to the filenames the encoder references.
var fileNames = map[string]string{
	NameFont:    "Inter-Regular.ttf",
	NameCaption: "script.txt",
	NameAudio:   "narration.mp3",
}

// FileName returns the engine filename for a logical asset name. Unknown
// names are used as-is.
func FileName(name string) string {
	if f, ok := fileNames[name]; ok {
		return f
	}
	return name
}

// Staged holds the bytes of one job's assets keyed by logical name. It is
// the job's sandbox: nothing in it leaves except through the encoder.
// The zero value is ready to use. Staged is not safe for concurrent use.
type Staged struct {
	files map[string][]byte
}

// Put stores data under name, replacing any previous value.
func (s *Staged) Put(name string, data []byte) {
	if s.files == nil {
		s.files = make(map[string][]byte)
	}
	s.files[name] = data
}

// Get returns the bytes staged under name.
func (s *Staged) Get(name string) ([]byte, bool) {
	data, ok := s.files[name]
	return data, ok
}

// Has reports whether name is staged.
func (s *Staged) Has(name string) bool {
	_, ok := s.files[name]
	return ok
}

// Names returns the staged logical names in sorted order.
func (s *Staged) Names() []string {
	names := make([]string, 0, len(s.files))
	for name := range s.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of staged assets.
func (s *Staged) Len() int {
	return len(s.files)
}

// Clear drops every staged asset.
func (s *Staged) Clear() {
	s.files = nil
}
