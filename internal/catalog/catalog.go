package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/langchou/evcompare/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed presets.yaml
var builtin []byte

type file struct {
	Presets []models.Preset `yaml:"presets"`
}

// Static 内存中的只读车型目录
type Static struct {
	presets []models.Preset
	byID    map[string]int
}

// Default 加载内置车型目录
func Default() *Static {
	s, err := Load(bytes.NewReader(builtin))
	if err != nil {
		panic(fmt.Sprintf("load builtin catalog: %v", err))
	}
	return s
}

// LoadFile 从 YAML 文件加载
func LoadFile(path string) (*Static, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load 解析并校验 YAML 车型目录
func Load(r io.Reader) (*Static, error) {
	var doc file
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	s := &Static{byID: make(map[string]int, len(doc.Presets))}
	var errs []error
	for i, p := range doc.Presets {
		if err := check(p); err != nil {
			errs = append(errs, fmt.Errorf("preset %d: %w", i, err))
			continue
		}
		if _, dup := s.byID[p.ID]; dup {
			errs = append(errs, fmt.Errorf("preset %d: duplicate id %q", i, p.ID))
			continue
		}
		s.byID[p.ID] = len(s.presets)
		s.presets = append(s.presets, p)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return s, nil
}

func check(p models.Preset) error {
	switch {
	case p.ID == "":
		return errors.New("missing id")
	case p.Name == "":
		return fmt.Errorf("%s: missing name", p.ID)
	case !p.Powertrain.Valid():
		return fmt.Errorf("%s: unknown powertrain %q", p.ID, p.Powertrain)
	case p.PurchasePrice < 0:
		return fmt.Errorf("%s: negative purchase price", p.ID)
	case p.Consumption <= 0:
		return fmt.Errorf("%s: consumption must be positive", p.ID)
	}
	return nil
}

// List 列出车型，powertrain 为空时返回全部
func (s *Static) List(_ context.Context, powertrain models.Powertrain) ([]models.Preset, error) {
	out := make([]models.Preset, 0, len(s.presets))
	for _, p := range s.presets {
		if powertrain == "" || p.Powertrain == powertrain {
			out = append(out, p)
		}
	}
	return out, nil
}

// Get 按 ID 获取车型
func (s *Static) Get(_ context.Context, id string) (*models.Preset, error) {
	i, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrPresetNotFound, id)
	}
	p := s.presets[i]
	return &p, nil
}

// All 全部车型 (用于数据库初始化)
func (s *Static) All() []models.Preset {
	out := make([]models.Preset, len(s.presets))
	copy(out, s.presets)
	return out
}
