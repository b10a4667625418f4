package quiz

import (
	"fmt"
	"log"

	"github.com/jinbekim/quizquiz/models"

	"github.com/samber/lo"
)

var topics = map[models.Category][]string{
	models.CategoryCodebase: {
		"File and folder structure",
		"Component responsibilities",
		"Routing setup",
		"State management",
		"API call patterns",
		"Styling approach",
		"Build and deployment configuration",
		"Test structure",
	},
	models.CategoryLibrary: {
		"Basic API usage",
		"Advanced features",
		"Configuration and options",
		"Common mistakes and fixes",
		"Performance tips",
		"TypeScript typing",
		"Best practices",
		"Comparison with other libraries",
	},
	models.CategoryRecentChange: {
		"Business purpose and background of the change",
		"Behavior before and after the change",
		"Impact of the change on user experience",
		"Technical problem solved by the change",
		"Reasoning behind the design or architecture decision",
		"Project conventions or patterns related to the change",
		"Data flow before and after the change",
		"Role of this feature in the overall system",
	},
	models.CategoryCodeReview: {
		"Naming and readability",
		"Error handling gaps",
		"Duplicated logic",
		"Component size and splitting",
		"Type safety",
		"Side effects in render paths",
		"Unused code and dependencies",
		"Test coverage of edge cases",
	},
	models.CategoryGitHistory: {
		"Commit message conventions",
		"Branching strategy",
		"Frequently changed files",
		"Reverts and hotfixes",
		"Feature evolution over time",
		"Release tagging",
		"Contributor areas of ownership",
		"Merge versus rebase history",
	},
	models.CategoryBestPractice: {
		"Composition API patterns",
		"Reactivity pitfalls",
		"Accessibility",
		"Security of user input",
		"Bundle size",
		"Async error handling",
		"Form validation",
		"Environment configuration",
	},
}

type Library struct {
	Name        string
	Description string
}

var libraryCatalog = []Library{
	{Name: "vue", Description: "Vue 3 - framework core"},
	{Name: "pinia", Description: "Pinia - state management"},
	{Name: "vue-router", Description: "Vue Router - routing"},
	{Name: "axios", Description: "Axios - HTTP client"},
	{Name: "echarts", Description: "ECharts - charting"},
	{Name: "dayjs", Description: "Day.js - date handling"},
	{Name: "lodash-es", Description: "Lodash - utility functions"},
	{Name: "zod", Description: "Zod - schema validation"},
	{Name: "@tanstack/vue-query", Description: "TanStack Query - server state"},
	{Name: "@vueuse/core", Description: "VueUse - composition utilities"},
	{Name: "radix-vue", Description: "Radix Vue - UI components"},
	{Name: "vite", Description: "Vite - build tool"},
	{Name: "typescript", Description: "TypeScript - type system"},
	{Name: "vitest", Description: "Vitest - test framework"},
}

const libraryFallbackCount = 5

// Topics returns the fixed topic set for a category.
func Topics(category models.Category) []string {
	return topics[category]
}

// SelectTopic picks one topic uniformly at random. Repeats across calls
// are allowed.
func SelectTopic(category models.Category) (string, error) {
	candidates := topics[category]
	if len(candidates) == 0 {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedCategory, category)
	}
	topic := lo.Sample(candidates)
	log.Printf("[INFO] Selected quiz topic: category=%s, topic=%q", category, topic)
	return topic, nil
}

// availableLibraries filters the catalog to the manifest's dependencies,
// falling back to the head of the catalog when nothing matches.
func availableLibraries(manifest *models.Manifest) []Library {
	libs := lo.Filter(libraryCatalog, func(lib Library, _ int) bool {
		return manifest.HasDependency(lib.Name)
	})
	if len(libs) == 0 {
		return libraryCatalog[:libraryFallbackCount]
	}
	return libs
}
