package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	cleanPatient = `{
		"resourceType": "Patient",
		"active": true,
		"identifier": [{"system": "urn:mrn", "value": "1"}],
		"name": [{"family": "Curie", "given": ["Marie"]}]
	}`
	ailingPatient   = `{"resourceType": "Patient", "name": [{"given": ["Rosalind"]}]}`
	namelessPatient = `{
		"resourceType": "Patient",
		"active": true,
		"identifier": [{"system": "urn:mrn", "value": "2"}]
	}`
)

type run struct {
	code   int
	stdout string
	stderr string
}

func invoke(t *testing.T, stdin string, args ...string) run {
	t.Helper()
	var out, errOut bytes.Buffer
	code := execute(args, strings.NewReader(stdin), &out, &errOut)
	return run{code: code, stdout: out.String(), stderr: errOut.String()}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestExamine_Clean(t *testing.T) {
	path := writeFile(t, t.TempDir(), "clean.json", cleanPatient)

	r := invoke(t, "", "examine", path)

	assert.Equal(t, exitClean, r.code, r.stderr)
	assert.Contains(t, r.stdout, "== "+path+" ==")
	assert.Contains(t, r.stdout, "Status: CLEAN")
}

func TestExamine_Ailments(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.json", cleanPatient)
	writeFile(t, dir, "b.json", ailingPatient)

	r := invoke(t, "", "examine", filepath.Join(dir, "*.json"))

	assert.Equal(t, exitAilments, r.code, r.stderr)
	assert.Contains(t, r.stdout, "Status: CLEAN")
	assert.Contains(t, r.stdout, "Status: AILING")
	assert.Contains(t, r.stdout, "[NOT_EMPTY] identifier: at least one value is required")
}

func TestExamine_FaultWins(t *testing.T) {
	dir := t.TempDir()
	ailing := writeFile(t, dir, "ailing.json", ailingPatient)
	broken := writeFile(t, dir, "broken.json", `{"resourceType": "Patient"`)

	r := invoke(t, "", "examine", ailing, broken, filepath.Join(dir, "missing-*.json"))

	assert.Equal(t, exitFault, r.code)
	assert.Contains(t, r.stdout, "Status: FAULT")
	assert.Contains(t, r.stdout, "invalid JSON")
	assert.Contains(t, r.stdout, "no files match")
}

func TestExamine_StdinJSON(t *testing.T) {
	r := invoke(t, ailingPatient, "examine", "--format", "json", "-")

	require.Equal(t, exitAilments, r.code, r.stderr)

	var results []resourceResult
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "stdin", results[0].Resource)
	assert.False(t, results[0].Clean)
	require.Len(t, results[0].Ailments, 1)
	assert.Equal(t, "identifier", results[0].Ailments[0].Property)
}

func TestExamine_Invariants(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "examiner.yaml", `
examination:
  object_name: Patient
invariants:
  - key: pat-name
    expression: name.exists()
    human: A patient needs a name
`)
	path := writeFile(t, dir, "nameless.json", namelessPatient)

	r := invoke(t, "", "examine", "--config", cfg, "--format", "json", path)

	require.Equal(t, exitAilments, r.code, r.stderr)
	var results []resourceResult
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &results))
	require.Len(t, results[0].Ailments, 1)
	assert.Equal(t, "pat-name", results[0].Ailments[0].Rule)
	assert.Equal(t, "Patient", results[0].Ailments[0].Property)
}

func TestExamine_MetricsFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "clean.json", cleanPatient)
	metrics := filepath.Join(dir, "examiner.prom")

	r := invoke(t, "", "examine", "--metrics-file", metrics, path)
	require.Equal(t, exitClean, r.code, r.stderr)

	data, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(data), "examiner_examinations_total 1")
	assert.Contains(t, string(data), "examiner_examinations_clean_total 1")
}

func TestRoot_InvalidFormat(t *testing.T) {
	r := invoke(t, "", "rules", "--format", "yaml")

	assert.Equal(t, exitFault, r.code)
	assert.Contains(t, r.stderr, `invalid format "yaml"`)
}

func TestRoot_BadConfig(t *testing.T) {
	cfg := writeFile(t, t.TempDir(), "bad.yaml", "invariants:\n  - key: broken\n")

	r := invoke(t, "", "rules", "--config", cfg)

	assert.Equal(t, exitFault, r.code)
	assert.Contains(t, r.stderr, "broken has no expression")
}

func TestRules(t *testing.T) {
	r := invoke(t, "", "rules")

	require.Equal(t, exitClean, r.code, r.stderr)
	for _, want := range []string{"NOT_EMPTY", "EACH", "NOT_NULL", "IDENTIFIER_SYSTEM", "IDENTIFIER_VALUE", "IDENTIFIER_UNIQUE"} {
		assert.Contains(t, r.stdout, want)
	}
	assert.Contains(t, r.stdout, "identifier.system")
}

func TestRules_JSONIncludesInvariants(t *testing.T) {
	cfg := writeFile(t, t.TempDir(), "examiner.yaml", `
invariants:
  - key: pat-gender
    expression: gender.exists()
`)

	r := invoke(t, "", "rules", "--config", cfg, "--format", "json")
	require.Equal(t, exitClean, r.code, r.stderr)

	var templates []struct {
		Rule     string `json:"rule"`
		Property string `json:"property"`
	}
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &templates))
	require.NotEmpty(t, templates)
	last := templates[len(templates)-1]
	assert.Equal(t, "pat-gender", last.Rule)
	assert.Equal(t, "object", last.Property)
}

func TestExamine_Bundle(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bundle.json", `{
		"resourceType": "Bundle",
		"type": "collection",
		"entry": [
			{"fullUrl": "urn:uuid:clean", "resource": `+cleanPatient+`},
			{"resource": {"resourceType": "Observation", "id": "o1"}},
			{"resource": `+ailingPatient+`}
		]
	}`)

	r := invoke(t, "", "examine", "--format", "json", path)
	require.Equal(t, exitAilments, r.code, r.stderr)

	var results []resourceResult
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &results))
	require.Len(t, results, 2)
	assert.Equal(t, path+"#urn:uuid:clean", results[0].Resource)
	assert.True(t, results[0].Clean)
	assert.Equal(t, path+"#entry[2]", results[1].Resource)
	assert.False(t, results[1].Clean)
}
