package repository

import (
	"strings"

	"workstation/internal/models"
	"workstation/internal/validation"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// normalizeNames trims, drops empties, and dedupes case-insensitively.
func normalizeNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		key := strings.ToLower(n)
		if n == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, n)
	}
	return out
}

// resolveTags gets or creates a tag for each name inside tx.
func resolveTags(tx *gorm.DB, names []string) ([]models.Tag, error) {
	names = normalizeNames(names)
	tags := make([]models.Tag, 0, len(names))
	for _, name := range names {
		slug := validation.SlugOrFallback(name)
		tag := models.Tag{Name: name, Slug: slug}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&tag).Error; err != nil {
			return nil, err
		}
		if tag.ID == 0 {
			if err := tx.Where("name = ? OR slug = ?", name, slug).First(&tag).Error; err != nil {
				return nil, err
			}
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

// resolveSkills gets or creates a skill for each name inside tx.
func resolveSkills(tx *gorm.DB, names []string) ([]models.Skill, error) {
	names = normalizeNames(names)
	skills := make([]models.Skill, 0, len(names))
	for _, name := range names {
		skill := models.Skill{Name: name}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&skill).Error; err != nil {
			return nil, err
		}
		if skill.ID == 0 {
			if err := tx.Where("name = ?", name).First(&skill).Error; err != nil {
				return nil, err
			}
		}
		skills = append(skills, skill)
	}
	return skills, nil
}
