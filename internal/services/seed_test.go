package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/RaysoLee/mindreshape/internal/models"
	"github.com/RaysoLee/mindreshape/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedAssessmentsYAML = `assessments:
  - title: "Sample Check"
    category: "bias"
    difficulty: 2
    estimated_minutes: 5
    tags: [bias]
    questions:
      - type: single
        text: "A question?"
        options:
          - { text: "Yes", score: 2, dimension: sample }
          - { text: "No", score: 0, dimension: sample }
      - type: text
        text: "Tell us more."
`

const seedTasksYAML = `tasks:
  - title: "A daily task"
    description: "Do the thing."
    type: daily
    difficulty: 1
    estimated_minutes: 5
    steps:
      - "Step one"
      - "Step two"
  - title: "A weekly task"
    type: weekly
    difficulty: 2
    estimated_minutes: 15
`

func writeSeedFiles(t *testing.T) (assessmentsPath, tasksPath string) {
	t.Helper()
	dir := t.TempDir()
	assessmentsPath = filepath.Join(dir, "assessments.yaml")
	tasksPath = filepath.Join(dir, "tasks.yaml")
	require.NoError(t, os.WriteFile(assessmentsPath, []byte(seedAssessmentsYAML), 0o644))
	require.NoError(t, os.WriteFile(tasksPath, []byte(seedTasksYAML), 0o644))
	return assessmentsPath, tasksPath
}

func TestSeedCatalogs(t *testing.T) {
	setupTestDB(t)
	assessmentsPath, tasksPath := writeSeedFiles(t)

	require.NoError(t, SeedCatalogs(t.Context(), testLogger(), assessmentsPath, tasksPath))

	assessments, err := repository.ListPublishedAssessments(t.Context())
	require.NoError(t, err)
	require.Len(t, assessments, 1)
	assert.Equal(t, "Sample Check", assessments[0].Title)
	assert.Equal(t, 2, assessments[0].QuestionCount)

	questions, err := repository.GetAssessmentQuestions(t.Context(), assessments[0].ID)
	require.NoError(t, err)
	require.Len(t, questions, 2)
	assert.Equal(t, models.QuestionTypeSingle, questions[0].Type)
	require.Len(t, questions[0].Options, 2)
	assert.Equal(t, 2, questions[0].Options[0].Score)
	assert.Equal(t, "sample", questions[0].Options[0].Dimension)
	assert.Empty(t, questions[1].Options)

	tasks, err := repository.ListActiveTasks(t.Context())
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}

func TestSeedCatalogsIsIdempotent(t *testing.T) {
	setupTestDB(t)
	assessmentsPath, tasksPath := writeSeedFiles(t)

	require.NoError(t, SeedCatalogs(t.Context(), testLogger(), assessmentsPath, tasksPath))
	require.NoError(t, SeedCatalogs(t.Context(), testLogger(), assessmentsPath, tasksPath))

	count, err := repository.CountAssessments(t.Context())
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	taskCount, err := repository.CountTasks(t.Context())
	require.NoError(t, err)
	assert.EqualValues(t, 2, taskCount)
}

func TestSeedCatalogsMissingFiles(t *testing.T) {
	setupTestDB(t)
	dir := t.TempDir()

	// Missing catalog files are not fatal.
	require.NoError(t, SeedCatalogs(t.Context(), testLogger(),
		filepath.Join(dir, "nope.yaml"), filepath.Join(dir, "also-nope.yaml")))

	count, err := repository.CountAssessments(t.Context())
	require.NoError(t, err)
	assert.Zero(t, count)
}
