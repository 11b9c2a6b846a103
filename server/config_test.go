package server

import (
	"github.com/jinzhu/configor"
	"testing"
)

func TestConfigDefaults(t *testing.T) {

	config := testConfig(t)
	if config.ProfileConfig.KeyPrefix != "profile-" || config.ProfileConfig.TimeoutMs != 1500 {
		t.Fatalf("Unexpected profile defaults %+v", config.ProfileConfig)
	}
	if config.MatchConfig.DamagePolicy != "one_hit" || config.Port != 7350 {
		t.Fatal("Default configuration not applied")
	}

}

func TestConfigFileLoads(t *testing.T) {

	config := &Config{}
	if err := configor.Load(config, "../config.yml"); err != nil {
		t.Fatal("Error while loading config.yml", err)
	}

	if config.Port != 7350 || config.MatchConfig.MaxPlayers != 8 {
		t.Fatalf("Unexpected values from config file %d %d", config.Port, config.MatchConfig.MaxPlayers)
	}
	if config.ProfileConfig.KeyPrefix != "profile-" {
		t.Fatalf("Unexpected profile key prefix %s", config.ProfileConfig.KeyPrefix)
	}
	if config.ContextConfig.Prefix != "match-" {
		t.Fatal("Defaults should fill keys missing from config file")
	}

}
