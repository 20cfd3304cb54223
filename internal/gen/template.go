package gen

import (
	"sort"
	"strings"
	"text/template"

	"sip-creator/internal/mapping"
	"sip-creator/internal/recdef"
)

type headerData struct {
	Prefix     string
	Version    string
	DefPrefix  string
	DefVersion string
	Trace      bool
	Facts      []fact
}

type fact struct {
	Key   string
	Value string
}

var headerTemplate = template.Must(template.New("header").Parse(`# Code generated by sip-creator from the node mappings. DO NOT EDIT.
# mapping {{.Prefix}} version {{.Version}}, record definition {{.DefPrefix}} {{.DefVersion}}
{{if .Trace}}# tracing enabled
{{end}}{{range .Facts}}# fact {{.Key}} = {{.Value}}
{{end}}
`))

func newHeaderData(rm *mapping.RecMapping, def *recdef.Definition, trace bool) headerData {
	data := headerData{
		Prefix:     rm.Prefix,
		Version:    rm.Version,
		DefPrefix:  def.Prefix,
		DefVersion: def.Version,
		Trace:      trace,
	}

	for k, v := range rm.Facts {
		data.Facts = append(data.Facts, fact{Key: k, Value: strings.Join(strings.Fields(v), " ")})
	}

	sort.Slice(data.Facts, func(i, j int) bool {
		return data.Facts[i].Key < data.Facts[j].Key
	})

	return data
}
