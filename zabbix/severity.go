package zabbix

import "github.com/alerta/zabbix-alerta/alert"

// severities maps Zabbix trigger severities onto Alerta severities.
var severities = map[string]alert.Severity{
	"Disaster":       alert.Critical,
	"High":           alert.Major,
	"Average":        alert.Minor,
	"Warning":        alert.Warning,
	"Information":    alert.Informational,
	"Not classified": alert.Indeterminate,
}

// TranslateSeverity returns the Alerta severity for a Zabbix severity name.
// Names are case sensitive, unknown names are indeterminate.
func TranslateSeverity(name string) alert.Severity {
	if sev, ok := severities[name]; ok {
		return sev
	}
	return alert.Indeterminate
}
