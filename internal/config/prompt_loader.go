package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// GetLoadedPrompts returns the loaded prompt content in a thread-safe way
func GetLoadedPrompts() *AllLoadedPrompts {
	return &loadedPrompts
}

// loadPromptsFromFiles loads custom prompts from external files if file paths are specified
func (c *Config) loadPromptsFromFiles() error {
	// Initialize loaded prompts exactly once
	loadedPromptsOnce.Do(func() {
		loadedPrompts = AllLoadedPrompts{}
	})

	// Load global prompts
	if err := c.loadSystemPromptsFromFiles(&c.AI.CustomPrompts.SystemPrompts, &loadedPrompts.Global.SystemPrompts); err != nil {
		return fmt.Errorf("failed to load global system prompts: %w", err)
	}
	if err := c.loadUserPromptsFromFiles(&c.AI.CustomPrompts.UserPrompts, &loadedPrompts.Global.UserPrompts); err != nil {
		return fmt.Errorf("failed to load global user prompts: %w", err)
	}

	// Load operation-specific prompts
	if err := c.loadSystemPromptsFromFiles(&c.AI.Summarize.CustomPrompts.SystemPrompts, &loadedPrompts.Summarize.SystemPrompts); err != nil {
		return fmt.Errorf("failed to load summarize system prompts: %w", err)
	}
	if err := c.loadUserPromptsFromFiles(&c.AI.Summarize.CustomPrompts.UserPrompts, &loadedPrompts.Summarize.UserPrompts); err != nil {
		return fmt.Errorf("failed to load summarize user prompts: %w", err)
	}

	if err := c.loadSystemPromptsFromFiles(&c.AI.Questions.CustomPrompts.SystemPrompts, &loadedPrompts.Questions.SystemPrompts); err != nil {
		return fmt.Errorf("failed to load questions system prompts: %w", err)
	}
	if err := c.loadUserPromptsFromFiles(&c.AI.Questions.CustomPrompts.UserPrompts, &loadedPrompts.Questions.UserPrompts); err != nil {
		return fmt.Errorf("failed to load questions user prompts: %w", err)
	}

	if err := c.loadSystemPromptsFromFiles(&c.AI.Rank.CustomPrompts.SystemPrompts, &loadedPrompts.Rank.SystemPrompts); err != nil {
		return fmt.Errorf("failed to load rank system prompts: %w", err)
	}
	if err := c.loadUserPromptsFromFiles(&c.AI.Rank.CustomPrompts.UserPrompts, &loadedPrompts.Rank.UserPrompts); err != nil {
		return fmt.Errorf("failed to load rank user prompts: %w", err)
	}

	return nil
}

// loadSystemPromptsFromFiles loads system prompts from files if file paths are specified
func (c *Config) loadSystemPromptsFromFiles(prompts *SystemPrompts, target *LoadedSystemPrompts) error {
	if prompts.SummarizeResumeFile != "" {
		content, err := c.loadPromptFromFile(prompts.SummarizeResumeFile, "system", "summarizeResume")
		if err != nil {
			return err
		}
		target.SummarizeResume = content
	}

	if prompts.GenerateQnAFile != "" {
		content, err := c.loadPromptFromFile(prompts.GenerateQnAFile, "system", "generateQnA")
		if err != nil {
			return err
		}
		target.GenerateQnA = content
	}

	if prompts.RankResumesFile != "" {
		content, err := c.loadPromptFromFile(prompts.RankResumesFile, "system", "rankResumes")
		if err != nil {
			return err
		}
		target.RankResumes = content
	}

	return nil
}

// loadUserPromptsFromFiles loads user prompts from files if file paths are specified
func (c *Config) loadUserPromptsFromFiles(prompts *UserPrompts, target *LoadedUserPrompts) error {
	if prompts.SummarizeResumeFile != "" {
		content, err := c.loadPromptFromFile(prompts.SummarizeResumeFile, "user", "summarizeResume")
		if err != nil {
			return err
		}
		target.SummarizeResume = content
	}

	if prompts.GenerateQnAFile != "" {
		content, err := c.loadPromptFromFile(prompts.GenerateQnAFile, "user", "generateQnA")
		if err != nil {
			return err
		}
		target.GenerateQnA = content
	}

	if prompts.RankResumesFile != "" {
		content, err := c.loadPromptFromFile(prompts.RankResumesFile, "user", "rankResumes")
		if err != nil {
			return err
		}
		target.RankResumes = content
	}

	return nil
}

// loadPromptFromFile loads a prompt from a file with proper error handling and logging
func (c *Config) loadPromptFromFile(filePath, promptType, operation string) (string, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for %s %s prompt file '%s': %w", promptType, operation, filePath, err)
	}

	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return "", fmt.Errorf("%s %s prompt file not found: %s", promptType, operation, absPath)
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s %s prompt file '%s': %w", promptType, operation, absPath, err)
	}

	trimmedContent := strings.TrimSpace(string(content))
	if trimmedContent == "" {
		return "", fmt.Errorf("%s %s prompt file '%s' is empty", promptType, operation, absPath)
	}

	log.Printf("[CONFIG] Loaded %s %s prompt from file: %s (%d characters)",
		promptType, operation, absPath, len(trimmedContent))

	return trimmedContent, nil
}
