package alerta

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"strings"

	"github.com/alerta/zabbix-alerta/alert"
	khttp "github.com/alerta/zabbix-alerta/http"
	"github.com/pkg/errors"
)

const alertPath = "/alert"

type Diagnostic interface {
	Sending(url string, body []byte)
	Sent(id string, statusCode int)
	Error(msg string, err error)
}

type Service struct {
	url    string
	key    string
	client *http.Client
	diag   Diagnostic
}

func NewService(c Config, d Diagnostic) (*Service, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &Service{
		url: strings.TrimSuffix(c.URL, "/") + alertPath,
		key: c.Key,
		client: khttp.NewClient(khttp.ClientConfig{
			Timeout:            c.Timeout,
			InsecureSkipVerify: c.InsecureSkipVerify,
		}),
		diag: d,
	}, nil
}

// URL is where alerts are posted.
func (s *Service) URL() string {
	return s.url
}

type response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	ID      string `json:"id"`
}

// Alert posts the alert to Alerta. It is not retried.
func (s *Service) Alert(ctx context.Context, r *alert.Record) error {
	body, err := json.Marshal(r)
	if err != nil {
		return errors.Wrap(err, "failed to marshal alert")
	}

	req, err := s.newRequest(ctx, body)
	if err != nil {
		return err
	}
	if s.diag != nil {
		s.diag.Sending(s.url, body)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.logError("failed to connect to Alerta", err)
		return errors.Wrap(err, "failed to connect to Alerta")
	}
	defer resp.Body.Close()

	content, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		s.logError("failed to read Alerta response", err)
		return errors.Wrap(err, "failed to read Alerta response")
	}

	res := &response{}
	decodeErr := json.Unmarshal(content, res)
	if resp.StatusCode/100 != 2 {
		msg := res.Message
		if decodeErr != nil || msg == "" {
			msg = fmt.Sprintf("failed to understand Alerta response. code: %d content: %s", resp.StatusCode, strings.TrimSpace(string(content)))
		}
		err := errors.Errorf("alert rejected by Alerta: %s", msg)
		s.logError("alert rejected", err)
		return err
	}

	if s.diag != nil {
		s.diag.Sent(res.ID, resp.StatusCode)
	}
	return nil
}

func (s *Service) logError(msg string, err error) {
	if s.diag != nil {
		s.diag.Error(msg, err)
	}
}

func (s *Service) newRequest(ctx context.Context, body []byte) (*http.Request, error) {
	req, err := http.NewRequest("POST", s.url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create POST request")
	}
	req = req.WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	if s.key != "" {
		req.Header.Set("Authorization", "Key "+s.key)
	}
	return req, nil
}
