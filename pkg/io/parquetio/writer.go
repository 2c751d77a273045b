package parquetio

import (
	"encoding/json"
	"fmt"
	"time"

	local "github.com/xitongsys/parquet-go-source/local"
	pw "github.com/xitongsys/parquet-go/writer"

	"github.com/wdm0006/switchboard/pkg/io/jsonlio"
	"github.com/wdm0006/switchboard/pkg/tabular"
)

type jsonField struct {
	Tag string `json:"Tag"`
}

type jsonSchema struct {
	Tag    string      `json:"Tag"`
	Fields []jsonField `json:"Fields"`
}

// schemaJSON renders s in the JSON schema dialect of parquet-go's JSONWriter.
func schemaJSON(s tabular.Schema) (string, error) {
	sc := jsonSchema{Tag: "name=schema, repetitiontype=REQUIRED"}
	for _, cs := range s.Columns {
		tag := "name=" + cs.Name + ", repetitiontype=OPTIONAL, type="
		switch cs.Type {
		case tabular.KindFloat:
			tag += "DOUBLE"
		case tabular.KindInt:
			tag += "INT64"
		case tabular.KindBool:
			tag += "BOOLEAN"
		default:
			tag += "BYTE_ARRAY, convertedtype=UTF8"
		}
		sc.Fields = append(sc.Fields, jsonField{Tag: tag})
	}
	b, err := json.Marshal(sc)
	return string(b), err
}

// WriteAll writes a Frame to a Parquet file. Times are stored as RFC 3339 strings.
func WriteAll(path string, f *tabular.Frame) (err error) {
	schema, err := schemaJSON(f.Schema())
	if err != nil {
		return err
	}
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := fw.Close(); err == nil {
			err = cerr
		}
	}()
	w, err := pw.NewJSONWriter(schema, fw, 4)
	if err != nil {
		return fmt.Errorf("parquet writer init: %w", err)
	}
	for r := 0; r < f.Rows(); r++ {
		rec := jsonlio.Row(f, r)
		for k, v := range rec {
			if t, ok := v.(time.Time); ok {
				rec[k] = t.Format(time.RFC3339)
			}
		}
		b, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		if err := w.Write(string(b)); err != nil {
			return fmt.Errorf("parquet write row %d: %w", r, err)
		}
	}
	if err := w.WriteStop(); err != nil {
		return fmt.Errorf("parquet write footer: %w", err)
	}
	return nil
}
