package run_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"text/template"

	"github.com/alerta/zabbix-alerta/cmd/zabbix-alerta/run"
	"github.com/alerta/zabbix-alerta/config"
	"github.com/alerta/zabbix-alerta/services/alerta/alertatest"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSubject = "PROBLEM: CPU load too high on web01"
	testBody    = "resource=web01\n" +
		"event=system.cpu.load\n" +
		"environment={$ENVIRONMENT}\n" +
		"severity=High\n" +
		"status=PROBLEM\n" +
		"ack=No\n" +
		"service=Linux servers,Web\n" +
		"attributes.ip=10.1.1.1\n" +
		"value=5.2"
)

var configTemplate = template.Must(template.New("config_file").Parse(`[DEFAULT]
endpoint = http://127.0.0.1:1
timeout = 5

[profile zabbix]
endpoint = {{.Endpoint}}
key = {{.Key}}

[profile broken]
endpoint = {{.Endpoint}}
sslverify = maybe
timeout = soon
`))

// writeConfig writes a config file whose "zabbix" profile points at endpoint.
func writeConfig(t *testing.T, endpoint, key string) string {
	t.Helper()
	var buf bytes.Buffer
	err := configTemplate.Execute(&buf, map[string]string{
		"Endpoint": endpoint,
		"Key":      key,
	})
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "alerta.conf")
	require.NoError(t, ioutil.WriteFile(path, buf.Bytes(), 0600))
	return path
}

func newCommand(env map[string]string) (*run.Command, *bytes.Buffer, *bytes.Buffer) {
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	cmd := run.NewCommand()
	cmd.Hostname = "zabbix01"
	cmd.Environ = config.MapEnviron(env)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd, stdout, stderr
}

func options(sendto string) run.Options {
	return run.Options{
		Sendto:      sendto,
		Summary:     testSubject,
		Body:        testBody,
		LogEncoding: "json",
	}
}

func TestCommand_SendWithProfile(t *testing.T) {
	ts := alertatest.NewServer()
	defer ts.Close()

	cmd, _, _ := newCommand(map[string]string{
		config.ConfigFileEnv: writeConfig(t, ts.URL, "secret"),
	})
	require.NoError(t, cmd.Run(context.Background(), options("zabbix")))

	got := ts.Requests()
	exp := []alertatest.Request{{
		Method:        "POST",
		URL:           "/alert",
		Authorization: "Key secret",
		ContentType:   "application/json",
		PostData: map[string]interface{}{
			"resource":    "web01",
			"event":       "system.cpu.load",
			"environment": "Production",
			"severity":    "major",
			"service":     []interface{}{"Linux servers", "Web"},
			"value":       "5.2",
			"attributes":  map[string]interface{}{"ip": "10.1.1.1"},
			"origin":      "zabbix/zabbix01",
			"rawData":     testSubject + "\n\n" + testBody,
			"summary":     testSubject,
		},
	}}
	if !cmp.Equal(exp, got) {
		t.Errorf("unexpected alerta request -exp/+got:\n%s", cmp.Diff(exp, got))
	}
}

func TestCommand_SendDirect(t *testing.T) {
	ts := alertatest.NewServer()
	defer ts.Close()

	cmd, _, _ := newCommand(map[string]string{
		config.ConfigFileEnv: filepath.Join(t.TempDir(), "missing.conf"),
	})
	require.NoError(t, cmd.Run(context.Background(), options(ts.URL+";direct-key")))

	got := ts.Requests()
	require.Len(t, got, 1)
	assert.Equal(t, "Key direct-key", got[0].Authorization)
}

func TestCommand_EnvironmentOverridesProfile(t *testing.T) {
	ts := alertatest.NewServer()
	defer ts.Close()

	cmd, _, _ := newCommand(map[string]string{
		config.ConfigFileEnv: writeConfig(t, "http://127.0.0.1:1", "secret"),
		config.EndpointEnv:   ts.URL,
		config.APIKeyEnv:     "from-env",
	})
	require.NoError(t, cmd.Run(context.Background(), options("zabbix")))

	got := ts.Requests()
	require.Len(t, got, 1)
	assert.Equal(t, "Key from-env", got[0].Authorization)
}

func TestCommand_DryRun(t *testing.T) {
	ts := alertatest.NewServer()
	defer ts.Close()

	cmd, stdout, _ := newCommand(map[string]string{
		config.ConfigFileEnv: writeConfig(t, ts.URL, "secret"),
	})
	opts := options("zabbix")
	opts.DryRun = true
	require.NoError(t, cmd.Run(context.Background(), opts))

	assert.Empty(t, ts.Requests())

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
	assert.Equal(t, "major", got["severity"])
	assert.Equal(t, "zabbix/zabbix01", got["origin"])

	// Fields keep the order they were first assigned in.
	out := stdout.String()
	assert.True(t, strings.Index(out, `"resource"`) < strings.Index(out, `"event"`))
	assert.True(t, strings.Index(out, `"value"`) < strings.Index(out, `"summary"`))
}

func TestCommand_MalformedConfig(t *testing.T) {
	ts := alertatest.NewServer()
	defer ts.Close()

	cmd, _, stderr := newCommand(map[string]string{
		config.ConfigFileEnv: writeConfig(t, ts.URL, "secret"),
	})
	err := cmd.Run(context.Background(), options("broken"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed config file")
	assert.Contains(t, stderr.String(), "failed to resolve options")
	assert.Empty(t, ts.Requests())
}

func TestCommand_Rejected(t *testing.T) {
	ts := alertatest.NewServer()
	defer ts.Close()
	ts.SetReject(http.StatusUnauthorized)

	cmd, _, stderr := newCommand(map[string]string{
		config.ConfigFileEnv: writeConfig(t, ts.URL, "wrong"),
	})
	err := cmd.Run(context.Background(), options("zabbix"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rejected by alertatest")
	assert.Contains(t, stderr.String(), "failed to send alert")
}

func TestCommand_Unreachable(t *testing.T) {
	ts := alertatest.NewServer()
	endpoint := ts.URL
	ts.Close()

	cmd, _, _ := newCommand(map[string]string{
		config.ConfigFileEnv: writeConfig(t, endpoint, "secret"),
	})
	err := cmd.Run(context.Background(), options("zabbix"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to Alerta")
}

func TestCommand_DebugFromConfig(t *testing.T) {
	ts := alertatest.NewServer()
	defer ts.Close()

	cmd, _, stderr := newCommand(map[string]string{
		config.ConfigFileEnv: writeConfig(t, ts.URL, "secret"),
	})
	require.NoError(t, cmd.Run(context.Background(), options("zabbix")))
	assert.NotContains(t, stderr.String(), "attributes.ip -> 10.1.1.1")

	path := filepath.Join(t.TempDir(), "debug.conf")
	require.NoError(t, ioutil.WriteFile(path, []byte("[DEFAULT]\nendpoint = "+ts.URL+"\nkey = secret\ndebug = yes\n"), 0600))
	cmd, _, stderr = newCommand(map[string]string{config.ConfigFileEnv: path})
	require.NoError(t, cmd.Run(context.Background(), options("")))
	assert.Contains(t, stderr.String(), "attributes.ip -> 10.1.1.1")
	assert.NotContains(t, stderr.String(), "secret")
}

func TestCommand_LogFile(t *testing.T) {
	ts := alertatest.NewServer()
	defer ts.Close()

	logFile := filepath.Join(t.TempDir(), "logs", "zabbix-alerta.log")
	cmd, _, stderr := newCommand(map[string]string{
		config.ConfigFileEnv: writeConfig(t, ts.URL, "secret"),
	})
	opts := options("zabbix")
	opts.LogFile = logFile
	require.NoError(t, cmd.Run(context.Background(), opts))

	assert.Empty(t, stderr.String())
	b, err := ioutil.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"msg":"alert"`)
}

func TestPrintConfigCommand(t *testing.T) {
	path := writeConfig(t, "https://alerta.example.com/api", "secret")

	stdout := new(bytes.Buffer)
	cmd := run.NewPrintConfigCommand()
	cmd.Environ = config.MapEnviron(map[string]string{config.ConfigFileEnv: path})
	cmd.Stdout = stdout
	require.NoError(t, cmd.Run("zabbix"))

	out := stdout.String()
	assert.Contains(t, out, `endpoint = "https://alerta.example.com/api"`)
	assert.Contains(t, out, `profile = "zabbix"`)
	assert.Contains(t, out, `key = "<redacted>"`)
	assert.Contains(t, out, "timeout = 5")
	assert.NotContains(t, out, "secret")
}

func TestPrintConfigCommand_Invalid(t *testing.T) {
	cmd := run.NewPrintConfigCommand()
	cmd.Environ = config.MapEnviron(map[string]string{
		config.ConfigFileEnv: filepath.Join(t.TempDir(), "missing.conf"),
		config.EndpointEnv:   "ftp://alerta.example.com",
	})
	cmd.Stdout = new(bytes.Buffer)
	assert.Error(t, cmd.Run(""))
}
