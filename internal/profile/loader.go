package profile

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML profile over the built-in defaults and returns it with the raw bytes
func Load(path string) (*Profile, []byte, error) {
	return LoadOver(path, Default())
}

// LoadOver reads a YAML profile; keys absent from the file keep seed's values
func LoadOver(path string, seed *Profile) (*Profile, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read profile: %w", err)
	}

	p, err := ParseOver(data, seed)
	if err != nil {
		return nil, data, err
	}
	return p, data, nil
}

// Parse decodes YAML on top of the defaults.
func Parse(data []byte) (*Profile, error) {
	return ParseOver(data, Default())
}

// ParseOver decodes YAML on top of a copy of seed.
// KnownFields(true): 오타/미사용 필드 즉시 실패
func ParseOver(data []byte, seed *Profile) (*Profile, error) {
	copied := *seed
	p := &copied
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	// empty document keeps the defaults
	if err := dec.Decode(p); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode profile: %w", err)
	}

	if err := Validate(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Hash generates SHA256 hash from the profile (canonical JSON)
// 주의: map 대신 struct 사용으로 해시 재현성 보장
func Hash(p *Profile) (string, error) {
	jsonBytes, err := json.Marshal(p)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}
