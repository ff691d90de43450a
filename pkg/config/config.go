// Package config loads the operator-facing configuration: the vesting
// program and mint addresses, the vesting execution date, and the per-tier
// vesting periods and token prices.
package config

import (
	"crypto/ed25519"
	"time"

	"github.com/mr-tron/base58/base58"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/synchrony-fi/vesting-server/pkg/solana/vesting"
)

type Config struct {
	LogLevel string `mapstructure:"log_level"`

	ProgramID    string `mapstructure:"program_id"`
	Mint         string `mapstructure:"mint"`
	MintDecimals uint8  `mapstructure:"mint_decimals"`

	// Date the token launches and vesting clocks start, RFC 3339 or
	// YYYY-MM-DD.
	ExecutionDate string `mapstructure:"execution_date"`

	// Vesting periods are whole years; schedules release monthly within
	// them. Prices are USD per token and convert a USD commitment into a
	// token amount.
	TeamVestingPeriod    float64 `mapstructure:"team_vesting_period"`
	PreseedVestingPeriod float64 `mapstructure:"preseed_vesting_period"`
	PreseedPrice         float64 `mapstructure:"preseed_price"`
	SeedVestingPeriod    float64 `mapstructure:"seed_vesting_period"`
	SeedPrice            float64 `mapstructure:"seed_price"`
	P1VestingPeriod      float64 `mapstructure:"p1_vesting_period"`
	P1Price              float64 `mapstructure:"p1_price"`
	P2VestingPeriod      float64 `mapstructure:"p2_vesting_period"`
	P2Price              float64 `mapstructure:"p2_price"`
}

var defaultConfig = Config{
	LogLevel:     "info",
	MintDecimals: 9,
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrap(err, "failed to read config")
	}

	cfg := defaultConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	return &cfg, nil
}

func (c *Config) Program() (ed25519.PublicKey, error) {
	key, err := base58.Decode(c.ProgramID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid program_id")
	}
	return key, nil
}

func (c *Config) MintKey() (ed25519.PublicKey, error) {
	key, err := base58.Decode(c.Mint)
	if err != nil {
		return nil, errors.Wrap(err, "invalid mint")
	}
	return key, nil
}

func (c *Config) ExecutionTime() (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, c.ExecutionDate); err == nil {
		return t, nil
	}

	t, err := time.Parse("2006-01-02", c.ExecutionDate)
	if err != nil {
		return time.Time{}, errors.Wrap(err, "invalid execution_date")
	}
	return t, nil
}

// TierFor maps an operator-supplied tier index and USD commitment to the
// investor class, release count, and token amount used for schedule
// generation. Tier 0 is the team allocation, whose amount is already a token
// quantity; tiers 1 through 4 are investment rounds priced in USD.
func (c *Config) TierFor(tier int, amountUSD float64) (vesting.TierInfo, error) {
	switch tier {
	case 0:
		return vesting.TierInfo{
			Group: vesting.GroupTeam,
			// The first vesting year is the cliff, not a release period.
			ReleasePeriods: c.TeamVestingPeriod*12 - 12,
			Amount:         amountUSD,
		}, nil
	case 1:
		return privateTier(c.PreseedVestingPeriod, c.PreseedPrice, amountUSD)
	case 2:
		return privateTier(c.SeedVestingPeriod, c.SeedPrice, amountUSD)
	case 3:
		return privateTier(c.P1VestingPeriod, c.P1Price, amountUSD)
	case 4:
		return privateTier(c.P2VestingPeriod, c.P2Price, amountUSD)
	}

	return vesting.TierInfo{}, errors.Errorf("unknown tier: %d", tier)
}

func privateTier(years, price, amountUSD float64) (vesting.TierInfo, error) {
	if price <= 0 {
		return vesting.TierInfo{}, errors.New("tier price must be positive")
	}

	return vesting.TierInfo{
		Group:          vesting.GroupPrivate,
		ReleasePeriods: years * 12,
		Amount:         amountUSD / price,
	}, nil
}
