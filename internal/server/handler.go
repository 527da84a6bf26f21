package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"resumerank/internal/convert"
	"resumerank/internal/corpus"
	"resumerank/internal/export"
	"resumerank/internal/observability"
	"resumerank/internal/types"

	"go.opentelemetry.io/otel/attribute"
)

// createSummarizeHandler wraps the summarize handler with observability
func (s *Server) createSummarizeHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("resumerank.api")
		ctx, span := tracer.Start(ctx, "api.summarize")
		defer span.End()

		var req SummarizeRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		if strings.TrimSpace(req.ResumeText) == "" {
			err := fmt.Errorf("missing resume text")
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Missing resume text", "resumeText field is required", http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.Int("request.resume_length", len(req.ResumeText)),
			attribute.String("operation", "summarize"),
		)

		input := types.SummarizeResumeInput{ResumeText: req.ResumeText}

		summarizeConfig := s.AppConfig.GetSummarizeConfig()
		aiService, err := s.newAIService(&summarizeConfig, "summarize")
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "service_creation"))
			writeErrorResponse(w, "Failed to create AI service", err.Error(), http.StatusInternalServerError)
			return
		}

		metrics := om.GetMetrics()
		var result types.SummarizeResumeOutput
		err = metrics.TrackAIOperationWithTokens(ctx, "summarize", func(ctx context.Context) *observability.AIOperationResult {
			output, tokenUsage, aiErr := aiService.SummarizeResume(ctx, input)
			result = output
			return &observability.AIOperationResult{
				Error:      aiErr,
				TokenUsage: (*observability.TokenUsage)(tokenUsage),
			}
		}, om)

		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "ai_processing"))
			metrics.RecordBusinessMetric(ctx, "resume_summarized", false)
			writeAppError(w, err)
			return
		}

		metrics.RecordBusinessMetric(ctx, "resume_summarized", true,
			attribute.Int("output.summary_length", len(result.Summary)))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("response.summary_length", len(result.Summary)),
		)

		writeJSONResponse(w, result)
	}
}

// createQuestionsHandler wraps the interview question handler with observability
func (s *Server) createQuestionsHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("resumerank.api")
		ctx, span := tracer.Start(ctx, "api.questions")
		defer span.End()

		var req QuestionsRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.Int("request.job_length", len(req.JobDescription)),
			attribute.String("operation", "questions"),
		)

		input := types.GenerateQnAInput{JobDescription: req.JobDescription}

		questionsConfig := s.AppConfig.GetQuestionsConfig()
		aiService, err := s.newAIService(&questionsConfig, "questions")
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "service_creation"))
			writeErrorResponse(w, "Failed to create AI service", err.Error(), http.StatusInternalServerError)
			return
		}

		metrics := om.GetMetrics()
		var result types.GenerateQnAOutput
		err = metrics.TrackAIOperationWithTokens(ctx, "questions", func(ctx context.Context) *observability.AIOperationResult {
			output, tokenUsage, aiErr := aiService.GenerateInterviewQnA(ctx, input)
			result = output
			return &observability.AIOperationResult{
				Error:      aiErr,
				TokenUsage: (*observability.TokenUsage)(tokenUsage),
			}
		}, om)

		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "ai_processing"))
			metrics.RecordBusinessMetric(ctx, "questions_generated", false)
			writeAppError(w, err)
			return
		}

		metrics.RecordBusinessMetric(ctx, "questions_generated", true,
			attribute.Int("qna_count", len(result.QnA)))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("qna_count", len(result.QnA)),
		)

		writeJSONResponse(w, result)
	}
}

// createRankHandler wraps the ranking handler with observability
func (s *Server) createRankHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("resumerank.api")
		ctx, span := tracer.Start(ctx, "api.rank")
		defer span.End()

		var req RankRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		resumes := req.Resumes
		if len(resumes) == 0 {
			resumes = corpus.Split(req.ResumeCorpus)
		}
		if len(resumes) == 0 {
			err := fmt.Errorf("no resumes submitted")
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Missing resumes", "provide a resumes list or a non-empty resumeCorpus", http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.Int("request.job_length", len(req.JobDescription)),
			attribute.Int("request.resume_count", len(resumes)),
			attribute.String("operation", "rank"),
		)

		input := types.RankResumesInput{
			JobDescription: req.JobDescription,
			Resumes:        resumes,
		}

		rankConfig := s.AppConfig.GetRankConfig()
		aiService, err := s.newAIService(&rankConfig, "rank")
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "service_creation"))
			writeErrorResponse(w, "Failed to create AI service", err.Error(), http.StatusInternalServerError)
			return
		}

		metrics := om.GetMetrics()
		var result types.RankResumesOutput
		err = metrics.TrackAIOperationWithTokens(ctx, "rank", func(ctx context.Context) *observability.AIOperationResult {
			output, tokenUsage, aiErr := aiService.RankResumes(ctx, input)
			result = output
			return &observability.AIOperationResult{
				Error:      aiErr,
				TokenUsage: (*observability.TokenUsage)(tokenUsage),
			}
		}, om)

		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "ai_processing"))
			metrics.RecordBusinessMetric(ctx, "resumes_ranked", false)
			writeAppError(w, err)
			return
		}

		metrics.RecordBusinessMetric(ctx, "resumes_ranked", true,
			attribute.Int("resume_count", len(resumes)),
			attribute.Int("result_count", len(result)))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("result_count", len(result)),
		)

		writeJSONResponse(w, result)
	}
}

// createConvertHandler accepts multipart file uploads and returns extracted
// resume text per file. A failed file never aborts the batch.
func (s *Server) createConvertHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("resumerank.api")
		ctx, span := tracer.Start(ctx, "api.convert")
		defer span.End()

		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		if err := r.ParseMultipartForm(s.AppConfig.App.MaxFileSize); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid upload", err.Error(), http.StatusBadRequest)
			return
		}

		fileHeaders := r.MultipartForm.File["files"]
		if len(fileHeaders) == 0 {
			writeErrorResponse(w, "No files uploaded", "attach one or more files under the 'files' field", http.StatusBadRequest)
			return
		}

		var readers []convert.NamedReader
		for _, header := range fileHeaders {
			file, err := header.Open()
			if err != nil {
				span.RecordError(err)
				writeErrorResponse(w, "Failed to read upload", err.Error(), http.StatusBadRequest)
				return
			}
			defer file.Close()
			readers = append(readers, convert.NamedReader{
				Filename: header.Filename,
				Reader:   file,
			})
		}

		results := s.Converter.Batch(readers)

		succeeded := 0
		for _, result := range results {
			if result.Error == "" {
				succeeded++
			}
		}

		metrics := om.GetMetrics()
		metrics.RecordBusinessMetric(ctx, "file_converted", succeeded == len(results),
			attribute.Int("file_count", len(results)),
			attribute.Int("succeeded", succeeded))

		span.SetAttributes(
			attribute.Int("file_count", len(results)),
			attribute.Int("succeeded", succeeded),
		)

		writeJSONResponse(w, map[string]any{"results": results})
	}
}

// createExportRankingsHandler renders ranking results as a spreadsheet download
func (s *Server) createExportRankingsHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("resumerank.api")
		ctx, span := tracer.Start(ctx, "api.export.rankings")
		defer span.End()

		var req ExportRankingsRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="rankings.xlsx"`)

		if err := export.WriteRankingsXLSX(w, req.Results); err != nil {
			span.RecordError(err)
			om.GetMetrics().RecordBusinessMetric(ctx, "export_generated", false,
				attribute.String("format", "xlsx"))
			w.Header().Del("Content-Disposition")
			writeAppError(w, err)
			return
		}

		om.GetMetrics().RecordBusinessMetric(ctx, "export_generated", true,
			attribute.String("format", "xlsx"),
			attribute.Int("result_count", len(req.Results)))
		span.SetAttributes(attribute.Bool("success", true))
	}
}

// createExportQuestionsHandler renders interview questions as a PDF download
func (s *Server) createExportQuestionsHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("resumerank.api")
		ctx, span := tracer.Start(ctx, "api.export.questions")
		defer span.End()

		var req ExportQuestionsRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="interview-questions.pdf"`)

		if err := export.WriteQuestionsPDF(w, req.Title, req.QnA); err != nil {
			span.RecordError(err)
			om.GetMetrics().RecordBusinessMetric(ctx, "export_generated", false,
				attribute.String("format", "pdf"))
			w.Header().Del("Content-Disposition")
			writeAppError(w, err)
			return
		}

		om.GetMetrics().RecordBusinessMetric(ctx, "export_generated", true,
			attribute.String("format", "pdf"),
			attribute.Int("qna_count", len(req.QnA)))
		span.SetAttributes(attribute.Bool("success", true))
	}
}

// createRateLimitMiddleware adds observability to rate limiting
func (s *Server) createRateLimitMiddleware(om *observability.ObservabilityManager) func(http.HandlerFunc) http.HandlerFunc {
	originalMiddleware := s.rateLimitMiddleware()

	return func(next http.HandlerFunc) http.HandlerFunc {
		return originalMiddleware(func(w http.ResponseWriter, r *http.Request) {
			// Wrap the ResponseWriter to detect rate limit responses
			wrapper := &responseWrapper{ResponseWriter: w, statusCode: 200}

			next(wrapper, r)

			if wrapper.statusCode == http.StatusTooManyRequests {
				metrics := om.GetMetrics()
				metrics.RecordBusinessMetric(r.Context(), "rate_limit_hit", true,
					attribute.String("endpoint", r.URL.Path),
					attribute.String("method", r.Method))
			}
		})
	}
}

// writeJSONResponse encodes a successful JSON response
func writeJSONResponse(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
