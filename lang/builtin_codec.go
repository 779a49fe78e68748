package lang

import (
	"strings"

	"github.com/ardnew/udx/format"
	"github.com/ardnew/udx/udm"
)

func decoder(name, codec string) *Builtin {
	return &Builtin{
		Name:   name,
		Params: []string{"text"},
		Doc:    "decodes " + codec + " text into a value",
		Fn: func(rt *Runtime, args []udm.Value) (udm.Value, error) {
			s, err := argString(name, args, 0)
			if err != nil {
				return nil, err
			}

			v, err := format.Decode(rt.Context(), codec, strings.NewReader(s), nil)
			if err != nil {
				return nil, raise(ErrHost, "%s: %v", name, err)
			}

			return v, nil
		},
	}
}

func encoder(name, codec string) *Builtin {
	return &Builtin{
		Name:   name,
		Params: []string{"value", "options?"},
		Doc:    "encodes a value as " + codec + " text",
		Fn: func(rt *Runtime, args []udm.Value) (udm.Value, error) {
			opts, err := argObject(name, args, 1)
			if err != nil {
				return nil, err
			}

			var sb strings.Builder
			if err := format.Encode(rt.Context(), codec, &sb, args[0], opts); err != nil {
				return nil, raise(ErrHost, "%s: %v", name, err)
			}

			return udm.String(strings.TrimRight(sb.String(), "\n")), nil
		},
	}
}

func codecBuiltins() []*Builtin {
	return []*Builtin{
		decoder("parseJson", "json"),
		encoder("renderJson", "json"),
		decoder("parseYaml", "yaml"),
		encoder("renderYaml", "yaml"),
		decoder("parseXml", "xml"),
		encoder("renderXml", "xml"),
		decoder("parseCsv", "csv"),
		encoder("renderCsv", "csv"),
	}
}
