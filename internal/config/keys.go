package config

import (
	"fmt"
	"os"
	"strconv"
)

type keyType int

const (
	kString keyType = iota
	kInt
)

type keySpec struct {
	env   string
	typ   keyType
	apply func(cfg *Config, v any)
}

var specs = []keySpec{
	{
		env: "INTERVIEWD_SERVER_PORT", typ: kInt,
		apply: func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
	},
	{
		env: "INTERVIEWD_SERVER_API_TOKEN", typ: kString,
		apply: func(cfg *Config, v any) { cfg.Server.APIToken = v.(string) },
	},
	{
		env: "INTERVIEWD_SERVER_MAX_CONNS", typ: kInt,
		apply: func(cfg *Config, v any) { cfg.Server.MaxConns = v.(int) },
	},
	{
		env: "INTERVIEWD_LLM_BASE_URL", typ: kString,
		apply: func(cfg *Config, v any) { cfg.LLM.BaseURL = v.(string) },
	},
	{
		env: "INTERVIEWD_LLM_API_KEY", typ: kString,
		apply: func(cfg *Config, v any) { cfg.LLM.APIKey = v.(string) },
	},
	{
		env: "INTERVIEWD_LLM_MODEL", typ: kString,
		apply: func(cfg *Config, v any) { cfg.LLM.Model = v.(string) },
	},
	{
		env: "INTERVIEWD_LLM_TRANSCRIBE_MODEL", typ: kString,
		apply: func(cfg *Config, v any) { cfg.LLM.TranscribeModel = v.(string) },
	},
	{
		env: "INTERVIEWD_STORAGE_DATA_DIR", typ: kString,
		apply: func(cfg *Config, v any) { cfg.Storage.DataDir = v.(string) },
	},
	{
		env: "INTERVIEWD_INTERVIEW_SOFT_LIMIT", typ: kInt,
		apply: func(cfg *Config, v any) { cfg.Interview.SoftLimit = v.(int) },
	},
	{
		env: "INTERVIEWD_INTERVIEW_MIN_STANDALONE", typ: kInt,
		apply: func(cfg *Config, v any) { cfg.Interview.MinStandalone = v.(int) },
	},
	{
		env: "INTERVIEWD_INTERVIEW_MIN_FOLLOW_UP", typ: kInt,
		apply: func(cfg *Config, v any) { cfg.Interview.MinFollowUp = v.(int) },
	},
	{
		env: "INTERVIEWD_JOBS_CATALOG_PATH", typ: kString,
		apply: func(cfg *Config, v any) { cfg.Jobs.CatalogPath = v.(string) },
	},
	{
		env: "INTERVIEWD_LOG_LEVEL", typ: kString,
		apply: func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
	},
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kInt:
			if i, err := strconv.Atoi(raw); err == nil {
				s.apply(cfg, i)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse integer from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		}
	}
}
