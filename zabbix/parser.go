// Package zabbix turns the macro-expanded text of a Zabbix notification into an Alerta alert.
//
// The body of a notification is expected to hold one macro assignment per line,
// as produced by a media type message template such as:
//
//	resource={HOST.NAME1}
//	event={ITEM.KEY1}
//	environment={$ENVIRONMENT}
//	severity={TRIGGER.SEVERITY}
//	status={TRIGGER.STATUS}
//	ack={EVENT.ACK_STATUS}
//	service={TRIGGER.HOSTGROUP_NAME}
//	attributes.ip={HOST.IP1}
//
// Later assignments to the same macro replace earlier ones.
package zabbix

import (
	"strings"
	"unicode"

	"github.com/alerta/zabbix-alerta/alert"
	"github.com/pkg/errors"
)

const (
	attributesPrefix = "attributes."
	// rawSeverityMarker asks for the Zabbix severity text to be kept as is.
	rawSeverityMarker = "!!"

	// unsetEnvironment is what Zabbix leaves behind when the {$ENVIRONMENT} user macro is not defined.
	unsetEnvironment   = "{$ENVIRONMENT}"
	defaultEnvironment = "Production"

	statusOK = "OK"
	ackYes   = "Yes"
)

type Diagnostic interface {
	// Assign is called for every accepted macro assignment, in body order.
	Assign(macro string, value alert.Value)
	SkippedLine(line string)
	MalformedLine(line string, err error)
}

type Parser struct {
	origin string
	diag   Diagnostic
}

// NewParser creates a parser that stamps alerts with an origin of zabbix/<hostname>.
func NewParser(hostname string, d Diagnostic) *Parser {
	return &Parser{
		origin: "zabbix/" + hostname,
		diag:   d,
	}
}

// Parse builds the alert for a notification subject and body.
// It never fails, lines it cannot use are reported and skipped.
func (p *Parser) Parse(subject, body string) *alert.Record {
	r := alert.NewRecord()
	attributes := make(map[string]string)
	rawSeverity := false

	for _, line := range splitLines(body) {
		if !strings.Contains(line, "=") {
			p.skipped(line)
			continue
		}
		macro, value, err := splitAssignment(line)
		if err != nil {
			p.malformed(line, err)
			continue
		}

		var v alert.Value
		switch {
		case macro == "service", macro == "tags":
			v = alert.List(strings.Split(value, ",")...)
		case macro == "severity":
			if strings.HasSuffix(value, rawSeverityMarker) {
				rawSeverity = true
				v = alert.String(strings.TrimSuffix(value, rawSeverityMarker))
			} else {
				v = alert.String(TranslateSeverity(value).String())
			}
		case strings.HasPrefix(macro, attributesPrefix):
			attributes[strings.TrimPrefix(macro, attributesPrefix)] = value
			p.assign(macro, alert.String(value))
			continue
		default:
			v = alert.String(value)
		}
		r.Set(macro, v)
		p.assign(macro, v)
	}

	if env, ok := r.GetString("environment"); ok && env == unsetEnvironment {
		r.SetString("environment", defaultEnvironment)
	}

	recovered := false
	if status, found := r.Delete("status"); found {
		if s, _ := status.AsString(); s == statusOK {
			recovered = true
			if rawSeverity {
				r.SetString("severity", alert.OK.String())
			} else {
				r.SetString("severity", alert.Normal.String())
			}
		}
	}

	if ack, found := r.Delete("ack"); found {
		if a, _ := ack.AsString(); a == ackYes && !recovered {
			r.SetString("status", "ack")
		}
	}

	r.Set("attributes", alert.Map(attributes))
	r.SetString("origin", p.origin)
	r.SetString("rawData", subject+"\n\n"+body)
	r.SetString("summary", subject)
	return r
}

func (p *Parser) assign(macro string, v alert.Value) {
	if p.diag != nil {
		p.diag.Assign(macro, v)
	}
}

func (p *Parser) skipped(line string) {
	if p.diag != nil {
		p.diag.SkippedLine(line)
	}
}

func (p *Parser) malformed(line string, err error) {
	if p.diag != nil {
		p.diag.MalformedLine(line, err)
	}
}

func splitLines(body string) []string {
	lines := strings.Split(body, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// splitAssignment splits a line on its first '='.
func splitAssignment(line string) (macro, value string, err error) {
	i := strings.IndexByte(line, '=')
	if i < 0 {
		return "", "", errors.New("missing '='")
	}
	macro = line[:i]
	if strings.TrimSpace(macro) == "" {
		return "", "", errors.New("empty macro name")
	}
	value = strings.TrimRightFunc(line[i+1:], unicode.IsSpace)
	return macro, value, nil
}
