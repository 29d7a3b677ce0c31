package pqencrypt

import "os"

// Payload is the content an operation works on: exactly one of an
// in-memory message or the contents of a file.
type Payload struct {
	Message []byte
	File    string
}

// MessagePayload returns a Payload for an in-memory message.
func MessagePayload(m []byte) Payload { return Payload{Message: m} }

// FilePayload returns a Payload read from path.
func FilePayload(path string) Payload { return Payload{File: path} }

func (p Payload) hasMessage() bool { return p.Message != nil }

// Read validates the choice of source and returns its bytes.
func (p Payload) Read() ([]byte, error) {
	switch {
	case p.hasMessage() && p.File != "":
		return nil, ErrMutuallyExclusiveInputs
	case p.hasMessage():
		return p.Message, nil
	case p.File != "":
		b, err := os.ReadFile(p.File)
		if err != nil {
			return nil, &IOError{Op: "read", Path: p.File, Err: err}
		}
		return b, nil
	}
	return nil, ErrMissingInput
}
