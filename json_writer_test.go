package allocation

import (
	"encoding/json"
	"testing"
)

func TestJsonObjectWriter(t *testing.T) {
	tests := []struct {
		name  string
		build func(w *jsonObjectWriter)
		want  string
	}{
		{
			name:  "empty object",
			build: func(w *jsonObjectWriter) {},
			want:  `{}`,
		},
		{
			name: "field order is kept",
			build: func(w *jsonObjectWriter) {
				w.Append("z", 1)
				w.Append("a", "hello")
			},
			want: `{"z":1,"a":"hello"}`,
		},
		{
			name: "embed raw object",
			build: func(w *jsonObjectWriter) {
				w.Append("a", 1)
				w.Embed(json.RawMessage(` {"c":3,"d":4} `))
				w.Append("b", 2)
			},
			want: `{"a":1,"c":3,"d":4,"b":2}`,
		},
		{
			name: "embed empty object",
			build: func(w *jsonObjectWriter) {
				w.Append("a", 1)
				w.Embed(json.RawMessage(`{}`))
			},
			want: `{"a":1}`,
		},
		{
			name: "embed from struct",
			build: func(w *jsonObjectWriter) {
				w.EmbedFrom(struct {
					C int `json:"c"`
				}{C: 3})
				w.Append("b", 2)
			},
			want: `{"c":3,"b":2}`,
		},
		{
			name: "optional skips zero values and unknown",
			build: func(w *jsonObjectWriter) {
				w.Append("a", 0)
				w.Optional("b", "")
				w.Optional("c", Unknown)
				w.Optional("d", V(0))
				w.Optional("e", "x")
			},
			want: `{"a":0,"d":0,"e":"x"}`,
		},
		{
			name: "unknown value appended as null",
			build: func(w *jsonObjectWriter) {
				w.Append("price", Unknown)
			},
			want: `{"price":null}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var w jsonObjectWriter
			tt.build(&w)
			got, err := w.MarshalJSON()
			if err != nil {
				t.Fatalf("MarshalJSON() unexpected error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("MarshalJSON() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestJsonObjectWriter_StickyError(t *testing.T) {
	var w jsonObjectWriter
	w.Append("bad", make(chan int))
	w.Append("good", 1)
	if _, err := w.MarshalJSON(); err == nil {
		t.Error("MarshalJSON() expected an error for an unmarshalable value")
	}
}
