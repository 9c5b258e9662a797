package alerta_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alerta/zabbix-alerta/alert"
	"github.com/alerta/zabbix-alerta/services/alerta"
	"github.com/alerta/zabbix-alerta/services/alerta/alertatest"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type diag struct {
	sent   []string
	errors []error
}

func (d *diag) Sending(url string, body []byte) {}
func (d *diag) Sent(id string, statusCode int)  { d.sent = append(d.sent, id) }
func (d *diag) Error(msg string, err error)     { d.errors = append(d.errors, err) }

func testRecord() *alert.Record {
	r := alert.NewRecord()
	r.SetString("resource", "web01")
	r.SetString("event", "cpu")
	r.SetString("severity", "major")
	r.Set("service", alert.List("a", "b"))
	r.Set("attributes", alert.Map(map[string]string{"ip": "10.1.1.1"}))
	return r
}

func newService(t *testing.T, url, key string, d alerta.Diagnostic) *alerta.Service {
	t.Helper()
	c := alerta.NewConfig()
	c.URL = url
	c.Key = key
	s, err := alerta.NewService(c, d)
	require.NoError(t, err)
	return s
}

func TestService_Alert(t *testing.T) {
	ts := alertatest.NewServer()
	defer ts.Close()

	d := new(diag)
	s := newService(t, ts.URL, "secret", d)
	require.NoError(t, s.Alert(context.Background(), testRecord()))

	got := ts.Requests()
	exp := []alertatest.Request{{
		Method:        "POST",
		URL:           "/alert",
		Authorization: "Key secret",
		ContentType:   "application/json",
		PostData: map[string]interface{}{
			"resource":   "web01",
			"event":      "cpu",
			"severity":   "major",
			"service":    []interface{}{"a", "b"},
			"attributes": map[string]interface{}{"ip": "10.1.1.1"},
		},
	}}
	if !cmp.Equal(exp, got) {
		t.Errorf("unexpected alerta request -exp/+got:\n%s", cmp.Diff(exp, got))
	}
	require.Len(t, d.sent, 1)
	assert.NotEmpty(t, d.sent[0])
}

func TestService_AlertWithoutKey(t *testing.T) {
	ts := alertatest.NewServer()
	defer ts.Close()

	s := newService(t, ts.URL+"/api/", "", nil)
	assert.Equal(t, ts.URL+"/api/alert", s.URL())
	require.NoError(t, s.Alert(context.Background(), testRecord()))

	got := ts.Requests()
	require.Len(t, got, 1)
	assert.Equal(t, "/api/alert", got[0].URL)
	assert.Empty(t, got[0].Authorization)
}

func TestService_AlertRejected(t *testing.T) {
	ts := alertatest.NewServer()
	defer ts.Close()
	ts.SetReject(http.StatusBadRequest)

	d := new(diag)
	s := newService(t, ts.URL, "", d)
	err := s.Alert(context.Background(), testRecord())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rejected by alertatest")
	require.Len(t, d.errors, 1)
	assert.Contains(t, d.errors[0].Error(), "rejected by alertatest")
	assert.Empty(t, d.sent)
}

func TestService_AlertUnexpectedResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream down"))
	}))
	defer ts.Close()

	s := newService(t, ts.URL, "", nil)
	err := s.Alert(context.Background(), testRecord())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "code: 502 content: upstream down")
}

func TestService_AlertConnectionError(t *testing.T) {
	ts := alertatest.NewServer()
	url := ts.URL
	ts.Close()

	d := new(diag)
	s := newService(t, url, "", d)
	err := s.Alert(context.Background(), testRecord())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to Alerta")
	assert.Len(t, d.errors, 1)
}

func TestService_AlertTimeout(t *testing.T) {
	done := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-done:
		case <-time.After(5 * time.Second):
		}
	}))
	defer ts.Close()
	defer close(done)

	c := alerta.NewConfig()
	c.URL = ts.URL
	c.Timeout = 50 * time.Millisecond
	s, err := alerta.NewService(c, nil)
	require.NoError(t, err)
	assert.Error(t, s.Alert(context.Background(), testRecord()))
}

func TestConfig_Validate(t *testing.T) {
	testCases := []struct {
		name  string
		url   string
		valid bool
	}{
		{name: "http", url: "http://localhost:8080", valid: true},
		{name: "https with path", url: "https://alerta.example.com/api", valid: true},
		{name: "empty", url: ""},
		{name: "relative", url: "/api"},
		{name: "unparsable", url: "http://[::1"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := alerta.NewConfig()
			c.URL = tc.url
			err := c.Validate()
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
