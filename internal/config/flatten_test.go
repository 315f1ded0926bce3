package config

import (
	"testing"
)

func TestFlatten_Simple(t *testing.T) {
	m := map[string]any{
		"a": "hello",
		"b": 42.0,
	}
	got := Flatten(m)
	if got["a"] != "hello" {
		t.Errorf("expected a=hello, got %v", got["a"])
	}
	if got["b"] != 42.0 {
		t.Errorf("expected b=42, got %v", got["b"])
	}
	if len(got) != 2 {
		t.Errorf("expected 2 keys, got %d", len(got))
	}
}

func TestFlatten_Nested(t *testing.T) {
	m := map[string]any{
		"backend": map[string]any{
			"base_url":        "http://localhost:8000",
			"timeout_seconds": 60.0,
		},
		"log_level": "info",
	}
	got := Flatten(m)
	if got["backend.base_url"] != "http://localhost:8000" {
		t.Errorf("expected backend.base_url, got %v", got["backend.base_url"])
	}
	if got["backend.timeout_seconds"] != 60.0 {
		t.Errorf("expected backend.timeout_seconds=60, got %v", got["backend.timeout_seconds"])
	}
	if got["log_level"] != "info" {
		t.Errorf("expected log_level=info, got %v", got["log_level"])
	}
	if len(got) != 3 {
		t.Errorf("expected 3 keys, got %d", len(got))
	}
}

func TestFlatten_DeeplyNested(t *testing.T) {
	m := map[string]any{
		"a": map[string]any{
			"b": map[string]any{
				"c": "deep",
			},
		},
	}
	got := Flatten(m)
	if got["a.b.c"] != "deep" {
		t.Errorf("expected a.b.c=deep, got %v", got["a.b.c"])
	}
	if len(got) != 1 {
		t.Errorf("expected 1 key, got %d", len(got))
	}
}

func TestFlatten_EmptyMap(t *testing.T) {
	got := Flatten(map[string]any{})
	if len(got) != 0 {
		t.Errorf("expected 0 keys, got %d", len(got))
	}
}

func TestFlatten_EmptyNestedMap(t *testing.T) {
	m := map[string]any{
		"a": map[string]any{},
	}
	got := Flatten(m)
	if len(got) != 0 {
		t.Errorf("expected 0 keys (empty nested map produces nothing), got %d", len(got))
	}
}

func TestUnflatten_Simple(t *testing.T) {
	flat := map[string]any{
		"a": "hello",
		"b": 42.0,
	}
	got := Unflatten(flat)
	if got["a"] != "hello" {
		t.Errorf("expected a=hello, got %v", got["a"])
	}
	if got["b"] != 42.0 {
		t.Errorf("expected b=42, got %v", got["b"])
	}
}

func TestUnflatten_Nested(t *testing.T) {
	flat := map[string]any{
		"backend.base_url": "http://localhost:8000",
		"telegram.token":   "123456:ABC",
		"log_level":        "info",
	}
	got := Unflatten(flat)
	backend, ok := got["backend"].(map[string]any)
	if !ok {
		t.Fatalf("expected backend to be map, got %T", got["backend"])
	}
	if backend["base_url"] != "http://localhost:8000" {
		t.Errorf("expected backend.base_url, got %v", backend["base_url"])
	}
	tg, ok := got["telegram"].(map[string]any)
	if !ok {
		t.Fatalf("expected telegram to be map, got %T", got["telegram"])
	}
	if tg["token"] != "123456:ABC" {
		t.Errorf("expected telegram.token, got %v", tg["token"])
	}
	if got["log_level"] != "info" {
		t.Errorf("expected log_level=info, got %v", got["log_level"])
	}
}

func TestUnflatten_DeeplyNested(t *testing.T) {
	flat := map[string]any{
		"a.b.c": "deep",
	}
	got := Unflatten(flat)
	a, ok := got["a"].(map[string]any)
	if !ok {
		t.Fatalf("expected a to be map, got %T", got["a"])
	}
	b, ok := a["b"].(map[string]any)
	if !ok {
		t.Fatalf("expected a.b to be map, got %T", a["b"])
	}
	if b["c"] != "deep" {
		t.Errorf("expected a.b.c=deep, got %v", b["c"])
	}
}

func TestUnflatten_EmptyMap(t *testing.T) {
	got := Unflatten(map[string]any{})
	if len(got) != 0 {
		t.Errorf("expected 0 keys, got %d", len(got))
	}
}

func TestRoundTrip_FlattenUnflatten(t *testing.T) {
	original := map[string]any{
		"data_dir":  "/home/test/.recall",
		"log_level": "debug",
		"backend": map[string]any{
			"base_url":        "http://localhost:8000",
			"timeout_seconds": 60.0,
		},
		"upload": map[string]any{
			"max_file_mb": 5.0,
		},
		"telegram": map[string]any{
			"token": "bot-token-abc",
		},
	}

	flat := Flatten(original)
	restored := Unflatten(flat)

	// Check top-level values
	if restored["data_dir"] != original["data_dir"] {
		t.Errorf("data_dir mismatch: %v != %v", restored["data_dir"], original["data_dir"])
	}
	if restored["log_level"] != original["log_level"] {
		t.Errorf("log_level mismatch: %v != %v", restored["log_level"], original["log_level"])
	}

	// Check nested values
	backend := restored["backend"].(map[string]any)
	origBackend := original["backend"].(map[string]any)
	if backend["base_url"] != origBackend["base_url"] {
		t.Errorf("backend.base_url mismatch: %v != %v", backend["base_url"], origBackend["base_url"])
	}
	if backend["timeout_seconds"] != origBackend["timeout_seconds"] {
		t.Errorf("backend.timeout_seconds mismatch: %v != %v", backend["timeout_seconds"], origBackend["timeout_seconds"])
	}

	upload := restored["upload"].(map[string]any)
	origUpload := original["upload"].(map[string]any)
	if upload["max_file_mb"] != origUpload["max_file_mb"] {
		t.Errorf("upload.max_file_mb mismatch: %v != %v", upload["max_file_mb"], origUpload["max_file_mb"])
	}

	tg := restored["telegram"].(map[string]any)
	origTg := original["telegram"].(map[string]any)
	if tg["token"] != origTg["token"] {
		t.Errorf("telegram.token mismatch: %v != %v", tg["token"], origTg["token"])
	}
}

func TestMaskSecrets_Token(t *testing.T) {
	flat := map[string]any{
		"backend.base_url": "http://localhost:8000",
		"telegram.token":   "123456:ABCdefGHIjkl",
		"log_level":        "info",
	}
	got := MaskSecrets(flat)

	// Non-secret should be unchanged
	if got["backend.base_url"] != "http://localhost:8000" {
		t.Errorf("expected backend.base_url unchanged, got %v", got["backend.base_url"])
	}
	if got["log_level"] != "info" {
		t.Errorf("expected log_level=info, got %v", got["log_level"])
	}

	// Secret should be masked with last 4 chars
	if got["telegram.token"] != "***Ijkl" {
		t.Errorf("expected telegram.token=***Ijkl, got %v", got["telegram.token"])
	}
}

func TestMaskSecrets_EmptySecret(t *testing.T) {
	flat := map[string]any{
		"telegram.token": "",
	}
	got := MaskSecrets(flat)
	if got["telegram.token"] != "" {
		t.Errorf("expected empty string to remain empty, got %v", got["telegram.token"])
	}
}

func TestMaskSecrets_ShortSecret(t *testing.T) {
	flat := map[string]any{
		"telegram.token": "ab",
	}
	got := MaskSecrets(flat)
	if got["telegram.token"] != "***ab" {
		t.Errorf("expected ***ab for short secret, got %v", got["telegram.token"])
	}
}

func TestMaskSecrets_ExactlyFourChars(t *testing.T) {
	flat := map[string]any{
		"telegram.token": "abcd",
	}
	got := MaskSecrets(flat)
	if got["telegram.token"] != "***abcd" {
		t.Errorf("expected ***abcd for 4-char secret, got %v", got["telegram.token"])
	}
}

func TestMaskSecrets_NoSecretKeys(t *testing.T) {
	flat := map[string]any{
		"log_level":        "debug",
		"data_dir":         "/tmp",
		"backend.base_url": "http://localhost:8000",
	}
	got := MaskSecrets(flat)
	if got["log_level"] != "debug" {
		t.Errorf("expected log_level=debug, got %v", got["log_level"])
	}
	if got["data_dir"] != "/tmp" {
		t.Errorf("expected data_dir=/tmp, got %v", got["data_dir"])
	}
	if got["backend.base_url"] != "http://localhost:8000" {
		t.Errorf("expected backend.base_url unchanged, got %v", got["backend.base_url"])
	}
}

func TestFlatten_MixedTypes(t *testing.T) {
	m := map[string]any{
		"str":   "hello",
		"num":   42.0,
		"bool":  true,
		"float": 3.14,
		"list":  []any{"a", "b"},
		"nested": map[string]any{
			"val": "inside",
		},
	}
	got := Flatten(m)
	if got["str"] != "hello" {
		t.Errorf("expected str=hello, got %v", got["str"])
	}
	if got["num"] != 42.0 {
		t.Errorf("expected num=42, got %v", got["num"])
	}
	if got["bool"] != true {
		t.Errorf("expected bool=true, got %v", got["bool"])
	}
	if got["float"] != 3.14 {
		t.Errorf("expected float=3.14, got %v", got["float"])
	}
	list, ok := got["list"].([]any)
	if !ok || len(list) != 2 {
		t.Errorf("expected list kept whole, got %v", got["list"])
	}
	if got["nested.val"] != "inside" {
		t.Errorf("expected nested.val=inside, got %v", got["nested.val"])
	}
}
