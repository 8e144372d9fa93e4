package triplog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// ErrEmptyFile 空文件
var ErrEmptyFile = errors.New("empty file")

// File 上传的原始文件
type File struct {
	Name string
	Data []byte
}

// FileError 单个文件的解码失败
type FileError struct {
	Name string
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

// Decode 解码一份导出文件。依次尝试标准 JSON、json-repair 修复、Hjson
func Decode(name string, raw []byte) (Document, error) {
	doc := Document{Name: name}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return doc, ErrEmptyFile
	}

	stdErr := json.Unmarshal(raw, &doc)
	if stdErr == nil {
		return doc, nil
	}

	if repaired, err := jsonrepair.RepairJSON(string(raw)); err == nil {
		doc = Document{Name: name}
		if err := json.Unmarshal([]byte(repaired), &doc); err == nil {
			return doc, nil
		}
	}

	var loose interface{}
	if err := hjson.Unmarshal(raw, &loose); err == nil {
		if normalized, err := json.Marshal(loose); err == nil {
			doc = Document{Name: name}
			if err := json.Unmarshal(normalized, &doc); err == nil {
				return doc, nil
			}
		}
	}

	return Document{Name: name}, fmt.Errorf("decode trip log: %w", stdErr)
}

// DecodeAll 解码多个文件，失败的文件单独返回而不中断
func DecodeAll(files []File) ([]Document, []FileError) {
	docs := make([]Document, 0, len(files))
	var failed []FileError
	for _, f := range files {
		doc, err := Decode(f.Name, f.Data)
		if err != nil {
			failed = append(failed, FileError{Name: f.Name, Err: err})
			continue
		}
		docs = append(docs, doc)
	}
	return docs, failed
}

// AggregateFiles 解码并汇总
func AggregateFiles(files []File) Summary {
	docs, failed := DecodeAll(files)
	s := Aggregate(docs)
	s.AddFileErrors(failed)
	return s
}
