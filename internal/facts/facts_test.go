package facts

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
)

const sampleFacts = `{
  "projectName": "geometry",
  "types": [
    {
      "qualifiedName": "geo::Point",
      "kind": "class",
      "members": [{"name": "x", "type": "double"}],
      "operations": [{"name": "move", "signature": "move(double,double)", "returnType": "void"}]
    },
    {
      "qualifiedName": "geo::Shape",
      "kind": "enum",
      "enumerators": ["Circle", "Square"]
    }
  ]
}`

func TestDecode(t *testing.T) {
	fs, err := Decode(bytes.NewReader([]byte(sampleFacts)))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if fs.ProjectName != "geometry" || len(fs.Types) != 2 {
		t.Fatalf("unexpected fact set: %+v", fs)
	}
	if fs.Types[0].Members[0].Type != "double" {
		t.Errorf("member type lost: %+v", fs.Types[0].Members)
	}
	if len(fs.Types[1].Enumerators) != 2 {
		t.Errorf("enumerators lost: %+v", fs.Types[1])
	}
}

func TestDecodeInvalid(t *testing.T) {
	if _, err := Decode(bytes.NewReader([]byte("{not json"))); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestLoadPlainFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "facts.json")
	if err := os.WriteFile(path, []byte(sampleFacts), 0644); err != nil {
		t.Fatal(err)
	}
	fs, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(fs.Types) != 2 {
		t.Errorf("got %d types", len(fs.Types))
	}
}

func TestLoadZstdFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "facts.json.zst")
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := enc.Write([]byte(sampleFacts)); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}

	fs, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if fs.ProjectName != "geometry" {
		t.Errorf("project name = %q", fs.ProjectName)
	}
}

func TestBestName(t *testing.T) {
	tf := &TypeFact{Name: "Point", DisplayName: "Point<T>", QualifiedName: "geo::Point"}
	if got := tf.BestName(); got != "geo::Point" {
		t.Errorf("BestName = %q", got)
	}
	tf = &TypeFact{Name: "Point"}
	if got := tf.BestName(); got != "Point" {
		t.Errorf("BestName fallback = %q", got)
	}
	tf = &TypeFact{}
	if got := tf.BestName(); got != "" {
		t.Errorf("BestName empty = %q", got)
	}
}
