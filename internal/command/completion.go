// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/urfave/cli/v3"

	"github.com/staranto/novactl/internal/fault"
)

const bashCompletionScript = `# bash completion for novactl
_novactl()
{
    local cur prev
    COMPREPLY=()
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}

    if [[ "$prev" == "--output" || "$prev" == "-o" ]]; then
        COMPREPLY=( $(compgen -W "text json raw yaml" -- "$cur") )
        return 0
    fi

    local i=1 cat=""
    while [[ $i -lt $COMP_CWORD ]]; do
        case "${COMP_WORDS[$i]}" in
            {{.Valued}}) ((i+=2)); continue ;;
            -*) ((i++)); continue ;;
        esac
        cat=${COMP_WORDS[$i]}
        break
    done

    if [[ -z "$cat" ]]; then
        if [[ "$cur" == -* ]]; then
            COMPREPLY=( $(compgen -W "{{.Flags}}" -- "$cur") )
        else
            COMPREPLY=( $(compgen -W "{{names .Groups}}" -- "$cur") )
        fi
        return 0
    fi

    if [[ $((i+1)) -eq $COMP_CWORD ]]; then
        case "$cat" in
{{- range .Groups}}
            {{.Name}}) COMPREPLY=( $(compgen -W "{{names .Actions}}" -- "$cur") ) ;;
{{- end}}
        esac
        return 0
    fi

    COMPREPLY=( $(compgen -f -- "$cur") )
    return 0
}

complete -F _novactl novactl
`

const zshCompletionScript = `#compdef novactl

_novactl() {
  local -a categories
  categories=(
{{- range .Groups}}
    '{{describe .}}'
{{- end}}
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'novactl categories' categories
    return
  fi

  local -a actions
  case $words[2] in
{{- range .Groups}}
    {{.Name}})
      actions=(
{{- range .Actions}}
        '{{describe .}}'
{{- end}}
      )
      ;;
{{- end}}
  esac

  if (( CURRENT == 3 )); then
    _describe -t actions "$words[2] actions" actions
  else
    _files
  fi
}

if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _novactl novactl
`

type completionEntry struct {
	Name    string
	Usage   string
	Actions []completionEntry
}

type completionData struct {
	Groups []completionEntry
	Flags  string
	Valued string
}

var completionFuncs = template.FuncMap{
	"names": func(entries []completionEntry) string {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name)
		}
		return strings.Join(names, " ")
	},
	// describe renders a zsh "name:description" item inside single quotes.
	"describe": func(e completionEntry) string {
		usage := strings.ReplaceAll(e.Usage, "'", `'\''`)
		usage = strings.ReplaceAll(usage, ":", `\:`)
		return e.Name + ":" + usage
	},
}

func completionModel(root *cli.Command) completionData {
	var data completionData
	for _, c := range Discover(root) {
		g := completionEntry{Name: c.Name, Usage: c.Value.Usage}
		for _, a := range Discover(c.Value) {
			g.Actions = append(g.Actions, completionEntry{Name: a.Name, Usage: a.Value.Usage})
		}
		data.Groups = append(data.Groups, g)
	}

	var flags, valued []string
	for _, f := range root.Flags {
		for _, n := range f.Names() {
			dashed := "--" + n
			if len(n) == 1 {
				dashed = "-" + n
			}
			flags = append(flags, dashed)
			if _, ok := f.(*cli.StringFlag); ok {
				valued = append(valued, dashed)
			}
		}
	}
	data.Flags = strings.Join(flags, " ")
	data.Valued = strings.Join(valued, "|")
	return data
}

// WriteCompletion renders the completion script of shell for the command
// tree under root.
func WriteCompletion(w io.Writer, root *cli.Command, shell string) error {
	if shell == "" {
		sh := os.Getenv("SHELL")
		switch {
		case strings.HasSuffix(sh, "zsh"):
			shell = "zsh"
		case strings.HasSuffix(sh, "bash"):
			shell = "bash"
		default:
			return fault.Validationf("cannot tell the shell from $SHELL; pass bash or zsh")
		}
	}

	var src string
	switch shell {
	case "bash":
		src = bashCompletionScript
	case "zsh":
		src = zshCompletionScript
	default:
		return fault.Validationf("unsupported shell %q", shell)
	}

	tmpl, err := template.New(shell).Funcs(completionFuncs).Parse(src)
	if err != nil {
		return fmt.Errorf("failed to parse %s completion template: %w", shell, err)
	}
	return tmpl.Execute(w, completionModel(root))
}
