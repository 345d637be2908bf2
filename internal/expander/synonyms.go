package expander

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultSynonyms returns the built-in synonym table. The entries cover
// the power-industry vocabulary of the default material corpus; callers
// with other domains load their own table with LoadSynonyms.
func DefaultSynonyms() map[string][]string {
	return map[string][]string{
		"电力现货": {"电力现货市场", "现货市场", "现货交易"},
		"现货市场": {"电力现货", "现货交易"},
		"光伏":   {"太阳能", "光伏发电", "太阳能发电"},
		"光伏装机": {"光伏容量", "太阳能装机"},
		"电网":   {"电力系统", "输电网", "配电网"},
		"新能源":  {"可再生能源", "清洁能源"},
		"储能":   {"电池储能", "储能系统"},
		"风电":   {"风力发电", "风能"},
		"电价":   {"电力价格", "上网电价"},
		"负荷":   {"用电负荷", "电力需求"},
		"spot": {"realtime", "real-time"},
		"pv":   {"solar", "photovoltaic"},
		"grid": {"network", "power-grid"},
	}
}

// LoadSynonyms reads a YAML synonym table mapping each token to its
// equivalent forms.
func LoadSynonyms(path string) (map[string][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read synonyms %s: %w", path, err)
	}
	var table map[string][]string
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parse synonyms %s: %w", path, err)
	}
	return table, nil
}
