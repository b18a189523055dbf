package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aqlanhadi/kwgn-sms/extractor/common"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
log_level: error
store:
  driver: file
  path: %s
accounts:
  - id: acc1
    sender_id: HDFCBK
    account_number_ends_with: "1234"
    bank_name: HDFC Bank
    account_type: Credit Card
    message_regex:
      - 'Rs\.(?<amount>\d+) spent on HDFC Bank Card x(?<last4>\d+) at \.?(?<merchant>.+?) on (?<year>\d{4})-(?<month>\d{2})-(?<day>\d{2}):(?<hour>\d{2}):(?<minute>\d{2}):(?<second>\d{2})'
`

const testMessages = `[
  {"id":"msg1","sender":"HDFCBK","body":"Rs.2500 spent on HDFC Bank Card x1234 at Amazon on 2025-02-15:14:30:25:123","timestamp":1708002625123},
  {"id":"msg2","sender":"JD-SBICRD","body":"Rs.123.00 spent on your SBI Credit Card ending 1234 at Swiggy IN on 13/02/25.","timestamp":1707916530456}
]`

// setup writes a config and a messages file into a temp dir.
func setup(t *testing.T) (cfgPath, msgPath, dir string) {
	t.Helper()
	setLogger(zerolog.Nop())
	dir = t.TempDir()

	cfgPath = filepath.Join(dir, "kwgn-sms.yaml")
	cfg := strings.Replace(testConfig, "%s", filepath.Join(dir, "data"), 1)
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	msgPath = filepath.Join(dir, "messages.json")
	require.NoError(t, os.WriteFile(msgPath, []byte(testMessages), 0o644))
	return cfgPath, msgPath, dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	compileMessagesPath, syncMessagesPath, exportPath, importPath = "", "", "", ""
	reportMonth, reportGroupBy, reportJSON = "", "category", false
	exportFormat, importFormat = "json", "json"

	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRootCmd(t *testing.T) {
	assert.NotNil(t, rootCmd, "rootCmd should be defined")
	assert.Equal(t, "kwgn-sms", rootCmd.Use)

	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"compile", "sync", "serve", "report", "export", "import"} {
		assert.Contains(t, names, want)
	}
}

func TestCompileCmd(t *testing.T) {
	cfgPath, msgPath, _ := setup(t)

	out, err := run(t, "compile", "-c", cfgPath, "-m", msgPath)
	require.NoError(t, err)

	var txs []common.Transaction
	require.NoError(t, json.Unmarshal([]byte(out), &txs))
	require.Len(t, txs, 1)
	assert.Equal(t, "msg1", txs[0].MessageID)
	assert.Equal(t, "2025-02-15", txs[0].Date)
	assert.Equal(t, "14:30:25", txs[0].Time)
}

func TestCompileCmd_MissingFile(t *testing.T) {
	cfgPath, _, dir := setup(t)

	_, err := run(t, "compile", "-c", cfgPath, "-m", filepath.Join(dir, "nope.json"))
	assert.ErrorContains(t, err, "failed to read messages")
}

func TestSyncCmd_Idempotent(t *testing.T) {
	cfgPath, msgPath, dir := setup(t)

	out, err := run(t, "sync", "-c", cfgPath, "-m", msgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Complete: 2 messages, 1 compiled, 1 added, 0 skipped, 1 total")

	out, err = run(t, "sync", "-c", cfgPath, "-m", msgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "0 added, 1 skipped, 1 total")

	_, err = os.Stat(filepath.Join(dir, "data", "transactions.json"))
	assert.NoError(t, err)
}

func TestReportCmd(t *testing.T) {
	cfgPath, msgPath, _ := setup(t)
	_, err := run(t, "sync", "-c", cfgPath, "-m", msgPath)
	require.NoError(t, err)

	out, err := run(t, "report", "-c", cfgPath, "--group-by", "account", "--month", "2025-02")
	require.NoError(t, err)
	assert.Contains(t, out, "HDFC Bank (1234)")
	assert.Contains(t, out, "-2500.00")

	_, err = run(t, "report", "-c", cfgPath, "--month", "Feb")
	assert.Error(t, err)
}

func TestExportImportCmd(t *testing.T) {
	cfgPath, msgPath, dir := setup(t)
	_, err := run(t, "sync", "-c", cfgPath, "-m", msgPath)
	require.NoError(t, err)

	exportFile := filepath.Join(dir, "export.json")
	_, err = run(t, "export", "-c", cfgPath, "-o", exportFile)
	require.NoError(t, err)

	other, _, _ := setup(t)
	out, err := run(t, "import", "-c", other, "-f", exportFile)
	require.NoError(t, err)
	assert.Contains(t, out, "4 keys imported")

	out, err = run(t, "export", "-c", other)
	require.NoError(t, err)

	var doc map[string][]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Len(t, doc["TRANSACTIONS"], 1)
	assert.Len(t, doc["MESSAGES"], 2)
}

func TestExportImportCmd_CSV(t *testing.T) {
	cfgPath, msgPath, dir := setup(t)
	_, err := run(t, "sync", "-c", cfgPath, "-m", msgPath)
	require.NoError(t, err)

	exportFile := filepath.Join(dir, "export.csv")
	_, err = run(t, "export", "-c", cfgPath, "--format", "csv", "-o", exportFile)
	require.NoError(t, err)

	data, err := os.ReadFile(exportFile)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "TRANSACTIONS,"))
	assert.Contains(t, string(data), "\nMESSAGES,")

	other, _, _ := setup(t)
	out, err := run(t, "import", "-c", other, "--format", "csv", "-f", exportFile)
	require.NoError(t, err)
	assert.Contains(t, out, "4 keys imported")

	out, err = run(t, "export", "-c", other)
	require.NoError(t, err)

	var doc map[string][]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Len(t, doc["TRANSACTIONS"], 1)
	assert.Len(t, doc["MESSAGES"], 2)
}

func TestExportCmd_UnknownFormat(t *testing.T) {
	cfgPath, _, _ := setup(t)
	_, err := run(t, "export", "-c", cfgPath, "--format", "xml")
	assert.ErrorContains(t, err, `unknown format "xml"`)
}

func TestImportCmd_RejectsWrongShape(t *testing.T) {
	cfgPath, _, dir := setup(t)
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"TRANSACTIONS":{"id":"x"}}`), 0o644))

	_, err := run(t, "import", "-c", cfgPath, "-f", bad)
	assert.ErrorContains(t, err, `invalid value for key "TRANSACTIONS"`)
}
