package config

// applyOperationDefaults applies global defaults to operation-specific configuration
func (c *Config) applyOperationDefaults(opCfg *OperationAIConfig) {
	if opCfg.Provider == "" {
		opCfg.Provider = c.AI.Provider
	}
	if opCfg.Model == "" {
		opCfg.Model = c.AI.Model
	}
	if opCfg.Timeout == nil {
		opCfg.Timeout = &c.AI.Timeout
	}
	if opCfg.APIKey == "" {
		opCfg.APIKey = c.AI.APIKey
	}
	if opCfg.MaxRetries == nil {
		opCfg.MaxRetries = &c.AI.MaxRetries
	}
	if opCfg.Temperature == nil {
		opCfg.Temperature = &c.AI.Temperature
	}
	// UseSystemPrompts: apply global default only if not explicitly set
	if opCfg.UseSystemPrompts == nil {
		opCfg.UseSystemPrompts = &c.AI.UseSystemPrompts
	}
}

// GetSummarizeConfig returns the AI configuration for summarize operations with fallback to global config
func (c *Config) GetSummarizeConfig() OperationAIConfig {
	config := c.AI.Summarize

	// Apply common defaults
	c.applyOperationDefaults(&config)

	// Apply summarize-specific prompt fallbacks
	if config.CustomPrompts.SystemPrompts.SummarizeResume == "" {
		config.CustomPrompts.SystemPrompts.SummarizeResume = c.AI.CustomPrompts.SystemPrompts.SummarizeResume
	}
	if config.CustomPrompts.UserPrompts.SummarizeResume == "" {
		config.CustomPrompts.UserPrompts.SummarizeResume = c.AI.CustomPrompts.UserPrompts.SummarizeResume
	}
	// Also copy file paths for potential later loading
	if config.CustomPrompts.SystemPrompts.SummarizeResumeFile == "" {
		config.CustomPrompts.SystemPrompts.SummarizeResumeFile = c.AI.CustomPrompts.SystemPrompts.SummarizeResumeFile
	}
	if config.CustomPrompts.UserPrompts.SummarizeResumeFile == "" {
		config.CustomPrompts.UserPrompts.SummarizeResumeFile = c.AI.CustomPrompts.UserPrompts.SummarizeResumeFile
	}

	return config
}

// GetQuestionsConfig returns the AI configuration for interview question generation with fallback to global config
func (c *Config) GetQuestionsConfig() OperationAIConfig {
	config := c.AI.Questions

	// Apply common defaults
	c.applyOperationDefaults(&config)

	// Apply questions-specific prompt fallbacks
	if config.CustomPrompts.SystemPrompts.GenerateQnA == "" {
		config.CustomPrompts.SystemPrompts.GenerateQnA = c.AI.CustomPrompts.SystemPrompts.GenerateQnA
	}
	if config.CustomPrompts.UserPrompts.GenerateQnA == "" {
		config.CustomPrompts.UserPrompts.GenerateQnA = c.AI.CustomPrompts.UserPrompts.GenerateQnA
	}
	// Also copy file paths for potential later loading
	if config.CustomPrompts.SystemPrompts.GenerateQnAFile == "" {
		config.CustomPrompts.SystemPrompts.GenerateQnAFile = c.AI.CustomPrompts.SystemPrompts.GenerateQnAFile
	}
	if config.CustomPrompts.UserPrompts.GenerateQnAFile == "" {
		config.CustomPrompts.UserPrompts.GenerateQnAFile = c.AI.CustomPrompts.UserPrompts.GenerateQnAFile
	}

	return config
}

// GetRankConfig returns the AI configuration for ranking operations with fallback to global config
func (c *Config) GetRankConfig() OperationAIConfig {
	config := c.AI.Rank

	// Apply common defaults
	c.applyOperationDefaults(&config)

	// Apply rank-specific prompt fallbacks
	if config.CustomPrompts.SystemPrompts.RankResumes == "" {
		config.CustomPrompts.SystemPrompts.RankResumes = c.AI.CustomPrompts.SystemPrompts.RankResumes
	}
	if config.CustomPrompts.UserPrompts.RankResumes == "" {
		config.CustomPrompts.UserPrompts.RankResumes = c.AI.CustomPrompts.UserPrompts.RankResumes
	}
	// Also copy file paths for potential later loading
	if config.CustomPrompts.SystemPrompts.RankResumesFile == "" {
		config.CustomPrompts.SystemPrompts.RankResumesFile = c.AI.CustomPrompts.SystemPrompts.RankResumesFile
	}
	if config.CustomPrompts.UserPrompts.RankResumesFile == "" {
		config.CustomPrompts.UserPrompts.RankResumesFile = c.AI.CustomPrompts.UserPrompts.RankResumesFile
	}

	return config
}

// GetLoadedSummarizePrompts returns a copy of the loaded prompts for the summarize operation
func (c *Config) GetLoadedSummarizePrompts() OperationLoadedPrompts {
	return loadedPrompts.Summarize
}

// GetLoadedQuestionsPrompts returns a copy of the loaded prompts for the questions operation
func (c *Config) GetLoadedQuestionsPrompts() OperationLoadedPrompts {
	return loadedPrompts.Questions
}

// GetLoadedRankPrompts returns a copy of the loaded prompts for the rank operation
func (c *Config) GetLoadedRankPrompts() OperationLoadedPrompts {
	return loadedPrompts.Rank
}

// GetLoadedGlobalPrompts returns a copy of the loaded global prompts
func (c *Config) GetLoadedGlobalPrompts() LoadedPrompts {
	return loadedPrompts.Global
}
