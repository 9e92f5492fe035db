package feed

import "encoding/json"

// A Serializer converts domain activity values to and from the opaque payload stored on a row.
// Storage never inspects payloads; it only carries them.
type Serializer interface {
	Dump(v interface{}) ([]byte, error)
	Load(data []byte, v interface{}) error
}

// JSONSerializer encodes activity values as JSON.
type JSONSerializer struct{}

func (JSONSerializer) Dump(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONSerializer) Load(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}
