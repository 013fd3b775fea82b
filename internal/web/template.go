package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/AnnaPov19/DogFeeder/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"clock": func(t time.Time) string {
		if t.IsZero() {
			return "never"
		}
		return t.Format("02/01/2006 15:04:05")
	},
	"grams": func(g float64) string {
		return fmt.Sprintf("%.1f g", g)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="10">
<title>Dog Feeder</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.active { color: green; font-weight: bold; }
.idle { color: #888; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Dog Feeder</h1>

<h2>Feeding</h2>
<table>
<tr><th>Schedule</th><td>{{.Config.Schedule}}</td></tr>
<tr><th>Next slot</th><td id="next-slot">{{if .NextSlot}}{{.NextSlot}} ({{clock .NextAt}}){{else}}none{{end}}</td></tr>
<tr><th>Last fed</th><td id="last-fed">{{clock .LastFed}}</td></tr>
<tr><th>Fired / missed / dispensed</th><td>{{.Counts.Fired}} / {{.Counts.Missed}} / {{.Counts.Dispensed}}</td></tr>
</table>

<h2>Measurement</h2>
<table>
<tr><th>Phase</th><td id="phase" class="{{if eq .Measurement.Phase.String "ACTIVE"}}active{{else}}idle{{end}}">{{.Measurement.Phase}}</td></tr>
{{if .Measurement.CycleID}}<tr><th>Cycle</th><td>{{.Measurement.CycleID}}</td></tr>
<tr><th>Fed</th><td>{{grams .Measurement.FirstWeight}}</td></tr>
<tr><th>Now</th><td>{{grams .Measurement.LastWeight}}</td></tr>
<tr><th>Midpoint reading</th><td>{{if .Measurement.MidpointFired}}sent{{else}}pending{{end}}</td></tr>{{end}}
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{clock .StartTime}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}} ms</td></tr>
<tr><th>Window / midpoint</th><td>{{.Config.WindowMs}} / {{.Config.MidpointMs}} ms</td></tr>
<tr><th>Noise floor</th><td>{{grams .Config.NoiseFloor}}</td></tr>
</table>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	indexTmpl.Execute(w, data)
}
