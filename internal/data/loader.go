package data

import (
	"bytes"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/crypto/blake2b"
	"gopkg.in/yaml.v3"
)

//go:embed dataset.schema.json
var schemaJSON string

// ZstdExt marks a zstd-compressed dataset file.
const ZstdExt = ".zst"

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func datasetSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiledSchema, schemaErr = jsonschema.CompileString("dataset.schema.json", schemaJSON)
	})
	return compiledSchema, schemaErr
}

// LoadDataset reads a dataset file. Files ending in .zst are decompressed
// first.
func LoadDataset(path string) (*Dataset, error) {
	raw, err := ReadDatasetFile(path)
	if err != nil {
		return nil, err
	}
	ds, err := ParseDataset(raw)
	if err != nil {
		return nil, fmt.Errorf("loading dataset %s: %w", path, err)
	}

	slog.Info("loaded dataset",
		"path", path,
		"maps", len(ds.Maps),
		"markers", len(ds.Markers),
		"npcs", len(ds.NPCs),
		"digest", shortDigest(ds.Digest))
	return ds, nil
}

// ReadDatasetFile returns the uncompressed bytes of a dataset file.
func ReadDatasetFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ZstdExt) {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("opening zstd stream %s: %w", path, err)
		}
		defer dec.Close()
		r = dec
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading dataset %s: %w", path, err)
	}
	return raw, nil
}

// ParseDataset validates raw YAML against the dataset schema and decodes it.
func ParseDataset(raw []byte) (*Dataset, error) {
	if err := ValidateDataset(raw); err != nil {
		return nil, err
	}

	var ds Dataset
	if err := yaml.Unmarshal(raw, &ds); err != nil {
		return nil, fmt.Errorf("decoding dataset: %w", err)
	}
	if err := ds.validate(); err != nil {
		return nil, fmt.Errorf("checking dataset: %w", err)
	}
	ds.Digest = Digest(raw)
	return &ds, nil
}

// ValidateDataset checks raw YAML against the embedded JSON schema.
func ValidateDataset(raw []byte) error {
	schema, err := datasetSchema()
	if err != nil {
		return fmt.Errorf("compiling dataset schema: %w", err)
	}

	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("decoding dataset: %w", err)
	}
	if doc == nil {
		return errors.New("decoding dataset: empty document")
	}

	// YAML → JSON, чтобы валидатор видел только JSON-типы.
	js, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("converting dataset to json: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(js))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("converting dataset to json: %w", err)
	}

	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("validating dataset: %w", err)
	}
	return nil
}

// Digest returns the hex blake2b-256 digest of raw.
func Digest(raw []byte) string {
	sum := blake2b.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// Compress encodes raw as a zstd frame.
func Compress(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("creating zstd encoder: %w", err)
	}
	if _, err := enc.Write(raw); err != nil {
		enc.Close()
		return nil, fmt.Errorf("compressing dataset: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("compressing dataset: %w", err)
	}
	return buf.Bytes(), nil
}
