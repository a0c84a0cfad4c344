package policy

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML policy file over the defaults and validates it
// KnownFields(true): 오타/미사용 필드 즉시 실패
func Load(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML bytes over the defaults and validates the result
func Parse(data []byte) (*Policy, error) {
	p := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(p); err != nil {
		return nil, err
	}

	if err := Validate(p); err != nil {
		return nil, err
	}
	return p, nil
}

// LoadOrDefault loads path when set, otherwise returns the validated defaults
func LoadOrDefault(path string) (*Policy, error) {
	if path == "" {
		p := Default()
		return p, Validate(p)
	}
	return Load(path)
}

// Hash generates SHA256 hash from Policy (canonical JSON)
// 학습 메타데이터에 기록되어 어떤 정책으로 학습했는지 추적
func Hash(p *Policy) (string, error) {
	jsonBytes, err := json.Marshal(p)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}
