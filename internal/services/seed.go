package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/RaysoLee/mindreshape/internal/models"
	"github.com/RaysoLee/mindreshape/internal/repository"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"
)

// Seed catalog file shapes. Scores and dimensions live on options; a
// text question simply lists no options.

type seedAssessmentFile struct {
	Assessments []seedAssessment `yaml:"assessments"`
}

type seedAssessment struct {
	Title            string         `yaml:"title"`
	Description      string         `yaml:"description"`
	Category         string         `yaml:"category"`
	Difficulty       int            `yaml:"difficulty"`
	EstimatedMinutes int            `yaml:"estimated_minutes"`
	Tags             []string       `yaml:"tags"`
	Questions        []seedQuestion `yaml:"questions"`
}

type seedQuestion struct {
	Type        string       `yaml:"type"`
	Text        string       `yaml:"text"`
	Description string       `yaml:"description"`
	Options     []seedOption `yaml:"options"`
}

type seedOption struct {
	Text      string `yaml:"text"`
	Score     int    `yaml:"score"`
	Dimension string `yaml:"dimension"`
}

type seedTaskFile struct {
	Tasks []seedTask `yaml:"tasks"`
}

type seedTask struct {
	Title            string   `yaml:"title"`
	Description      string   `yaml:"description"`
	Type             string   `yaml:"type"`
	Category         string   `yaml:"category"`
	Difficulty       int      `yaml:"difficulty"`
	EstimatedMinutes int      `yaml:"estimated_minutes"`
	Steps            []string `yaml:"steps"`
	Tips             []string `yaml:"tips"`
	Resources        []string `yaml:"resources"`
}

// SeedCatalogs loads the assessment and task catalogs from their YAML
// files when the corresponding tables are empty. Already-populated
// tables are left untouched so restarts never duplicate content.
func SeedCatalogs(ctx context.Context, log *zap.Logger, assessmentsFile, tasksFile string) error {
	if err := seedAssessments(ctx, log, assessmentsFile); err != nil {
		return err
	}
	return seedTasks(ctx, log, tasksFile)
}

func seedAssessments(ctx context.Context, log *zap.Logger, path string) error {
	count, err := repository.CountAssessments(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		log.Debug("Assessment catalog already seeded", zap.Int64("count", count))
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn("Assessment catalog file not found, skipping seed", zap.String("path", path))
			return nil
		}
		return fmt.Errorf("reading assessment catalog: %w", err)
	}

	var file seedAssessmentFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing assessment catalog: %w", err)
	}

	for _, a := range file.Assessments {
		assessment := &models.Assessment{
			Title:            a.Title,
			Description:      a.Description,
			Category:         a.Category,
			Difficulty:       a.Difficulty,
			EstimatedMinutes: a.EstimatedMinutes,
			Tags:             a.Tags,
			IsPublished:      true,
		}
		for qi, q := range a.Questions {
			question := models.Question{
				OrderNum:     qi + 1,
				Type:         q.Type,
				QuestionText: q.Text,
				Description:  q.Description,
			}
			for oi, o := range q.Options {
				question.Options = append(question.Options, models.QuestionOption{
					OrderNum:   oi + 1,
					OptionText: o.Text,
					Score:      o.Score,
					Dimension:  o.Dimension,
				})
			}
			assessment.Questions = append(assessment.Questions, question)
		}
		if err := repository.CreateAssessment(ctx, assessment); err != nil {
			return fmt.Errorf("seeding assessment %q: %w", a.Title, err)
		}
	}

	log.Info("Seeded assessment catalog",
		zap.String("path", path),
		zap.Int("assessments", len(file.Assessments)),
	)
	return nil
}

func seedTasks(ctx context.Context, log *zap.Logger, path string) error {
	count, err := repository.CountTasks(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		log.Debug("Task catalog already seeded", zap.Int64("count", count))
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn("Task catalog file not found, skipping seed", zap.String("path", path))
			return nil
		}
		return fmt.Errorf("reading task catalog: %w", err)
	}

	var file seedTaskFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing task catalog: %w", err)
	}

	for _, t := range file.Tasks {
		task := &models.Task{
			Title:            t.Title,
			Description:      t.Description,
			Type:             t.Type,
			Category:         t.Category,
			Difficulty:       t.Difficulty,
			EstimatedMinutes: t.EstimatedMinutes,
			Steps:            toJSONList(t.Steps),
			Tips:             toJSONList(t.Tips),
			Resources:        toJSONList(t.Resources),
			IsActive:         true,
		}
		if err := repository.CreateTask(ctx, task); err != nil {
			return fmt.Errorf("seeding task %q: %w", t.Title, err)
		}
	}

	log.Info("Seeded task catalog",
		zap.String("path", path),
		zap.Int("tasks", len(file.Tasks)),
	)
	return nil
}

func toJSONList(items []string) datatypes.JSON {
	if len(items) == 0 {
		return nil
	}
	b, err := json.Marshal(items)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}
