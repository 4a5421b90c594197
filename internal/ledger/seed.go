// internal/ledger/seed.go
package ledger

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// StartingBalance is the seeded balance (and lifetime earned counter) for a
// fresh session.
const StartingBalance = 100

// DefaultRewards returns the starter catalog.
func DefaultRewards() []Reward {
	now := time.Now().UTC()
	return []Reward{
		{
			ID:                "1",
			Name:              "Premium Donation Badge",
			Description:       "A special badge to showcase your generous contributions",
			ImageURL:          "https://images.unsplash.com/photo-1562051036-e0eea191d42f",
			TokenCost:         50,
			AvailableQuantity: 10,
			CreatedAt:         now,
			UpdatedAt:         now,
		},
		{
			ID:                "2",
			Name:              "Featured Donor Status",
			Description:       "Get featured on our homepage as a top donor for one week",
			ImageURL:          "https://images.unsplash.com/photo-1533227268428-f9ed0900fb3b",
			TokenCost:         100,
			AvailableQuantity: 5,
			CreatedAt:         now,
			UpdatedAt:         now,
		},
		{
			ID:                "3",
			Name:              "Charity Choice Award",
			Description:       "Choose a charity to receive a special donation in your name",
			ImageURL:          "https://images.unsplash.com/photo-1532629345422-7515f3d16bb6",
			TokenCost:         200,
			AvailableQuantity: 3,
			CreatedAt:         now,
			UpdatedAt:         now,
		},
	}
}

// catalogFile is the YAML layout of a reward catalog override.
type catalogFile struct {
	Rewards []struct {
		ID                string `yaml:"id"`
		Name              string `yaml:"name"`
		Description       string `yaml:"description"`
		ImageURL          string `yaml:"image_url"`
		TokenCost         int    `yaml:"token_cost"`
		AvailableQuantity int    `yaml:"available_quantity"`
	} `yaml:"rewards"`
}

// LoadCatalog reads a reward catalog from a YAML seed file.
func LoadCatalog(path string) ([]Reward, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog file: %w", err)
	}

	now := time.Now().UTC()
	rewards := make([]Reward, 0, len(file.Rewards))
	for i, r := range file.Rewards {
		if r.ID == "" {
			return nil, fmt.Errorf("catalog entry %d: missing id", i)
		}
		if r.TokenCost <= 0 {
			return nil, fmt.Errorf("catalog entry %q: token_cost must be positive", r.ID)
		}
		if r.AvailableQuantity < 0 {
			return nil, fmt.Errorf("catalog entry %q: available_quantity must not be negative", r.ID)
		}
		rewards = append(rewards, Reward{
			ID:                r.ID,
			Name:              r.Name,
			Description:       r.Description,
			ImageURL:          r.ImageURL,
			TokenCost:         r.TokenCost,
			AvailableQuantity: r.AvailableQuantity,
			CreatedAt:         now,
			UpdatedAt:         now,
		})
	}
	return rewards, nil
}
