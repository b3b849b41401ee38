package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"google.golang.org/genai"
)

// LLMModelName is the GenAI backend to use for the client.
type LLMModelName int32

const (
	Pro25 LLMModelName = iota
	Flash25
	FlashLite25
	Flash20
)

// The Stringer interface for the model name.
func (t LLMModelName) String() string {
	switch t {
	case Pro25:
		return "gemini-2.5-pro"
	case Flash25:
		return "gemini-2.5-flash"
	case FlashLite25:
		return "gemini-2.5-flash-lite-preview-06-17"
	case Flash20:
		return "gemini-2.0-flash"
	default:
		return "gemini-2.0-flash"
	}
}

const embeddingModelName = "gemini-embedding-001"

func floatPointer(f float32) *float32 {
	return &f
}

func Int32Pointer(i int32) *int32 {
	return &i
}

// ClassificationResult is the structured classifier output for one garment photo.
type ClassificationResult struct {
	Category          string   `json:"category"`
	Subcategory       string   `json:"subcategory"`
	StyleTags         []string `json:"style_tags"`
	Pattern           string   `json:"pattern"`
	PatternConfidence float64  `json:"pattern_confidence"`
	PrimaryColor      string   `json:"primary_color"`
	Occasion          string   `json:"occasion"`
	Tradition         string   `json:"tradition"`
	Fit               string   `json:"fit"`

	InputTokenCount  int32 `json:"input_token_count"`
	OutputTokenCount int32 `json:"output_token_count"`
	TotalTokenCount  int32 `json:"total_token_count"`
}

// NeutralClassification is used when the classifier fails so an item still
// participates in recommendations with safe defaults.
func NeutralClassification() *ClassificationResult {
	return &ClassificationResult{
		Category:     "top",
		Subcategory:  "unknown",
		Pattern:      "solid",
		PrimaryColor: "unknown",
		Occasion:     "casual",
		Tradition:    "western",
		Fit:          "regular",
	}
}

type LLMStylistProcessor interface {
	ClassifyClothing(filePath string, modelName LLMModelName) (*ClassificationResult, error)
	EmbedClothing(ctx context.Context, description string) ([]float64, error)
}

type GoogleLLMStylistProcessor struct{}

var dashAlphaRule = regexp.MustCompile(`[^a-zA-Z0-9-]`)

func tryUploadGoogleStorage(ctx context.Context, client *genai.Client, filePath string, newName *string) (*genai.File, error) {
	var genFile *genai.File
	var err error
	maxUploadTimes := 3
	for i := range maxUploadTimes {
		config := &genai.UploadFileConfig{}
		if newName != nil {
			config = &genai.UploadFileConfig{
				Name: *newName,
			}
		}

		genFile, err = client.Files.UploadFromPath(ctx, filePath, config)
		if err == nil {

			fmt.Println("File uploaded successfully:", filePath, "Attempt:", i+1)
			return genFile, nil
		}
		fmt.Printf("Error uploading file %s, attempt %d: %v\n", filePath, i+1, err)
	}
	return nil, fmt.Errorf("failed to upload file to google storage /after %d attempts: %s", maxUploadTimes, filePath)
}

func (GoogleLLMStylistProcessor) ClassifyClothing(filePath string, modelName LLMModelName) (*ClassificationResult, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  os.Getenv("GOOGLE_API_KEY"),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating genai client: %v", err)
	}

	fileName := filepath.Base(filePath)
	sanitizedFileName := dashAlphaRule.ReplaceAllString(strings.ReplaceAll(fileName, ".", "-"), "")
	genFile, err := tryUploadGoogleStorage(ctx, client, filePath, &sanitizedFileName)
	if err != nil {
		fmt.Println("Error uploading file:", filePath, err)
		return nil, fmt.Errorf("error uploading file to google storage %s: %v", filePath, err)
	}

	parts := []*genai.Part{
		{
			FileData: &genai.FileData{
				FileURI:  genFile.URI,
				MIMEType: genFile.MIMEType,
			},
		},
		{
			Text: `Classify the single clothing item in the image. Allowed categories: top, bottom, dress, outerwear, shoes, accessories, bag, lehenga_set, saree. Pattern is "solid" when no print is visible; pattern_confidence is your certainty in the detected pattern from 0 to 1. Occasion is one of: casual, formal, work, party, beach, sports, wedding, festive. Tradition is western, ethnic or fusion. Fit is fitted, regular, loose or flowy. Style tags are short lowercase keywords like "minimal", "streetwear", "boho".`,
		},
	}

	result, err := client.Models.GenerateContent(ctx, modelName.String(), []*genai.Content{{Parts: parts}}, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		CandidateCount:   1,
		MaxOutputTokens:  4000,
		Temperature:      floatPointer(0.2),
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{
				{Text: `You are an expert fashion stylist analyzing garment photos. Return the response strictly in the requested JSON schema. If the image does not contain clothing, classify it as category "accessories" with subcategory "unknown".`},
			},
		},
		ResponseSchema: &genai.Schema{
			Type: "object",
			Properties: map[string]*genai.Schema{
				"category":           {Type: "string"},
				"subcategory":        {Type: "string"},
				"style_tags":         {Type: "array", Items: &genai.Schema{Type: "string"}},
				"pattern":            {Type: "string"},
				"pattern_confidence": {Type: "number"},
				"primary_color":      {Type: "string"},
				"occasion":           {Type: "string"},
				"tradition":          {Type: "string"},
				"fit":                {Type: "string"},
			},
			Required: []string{"category", "subcategory", "pattern", "primary_color", "occasion", "tradition", "fit"},
		},
	})

	if err != nil {
		fmt.Println("Error in GenerateContent:", err)
		return nil, fmt.Errorf("%v", err)
	}

	if result.PromptFeedback != nil {
		fmt.Println(result.PromptFeedback.BlockReason)
		fmt.Println(result.PromptFeedback.BlockReasonMessage)
		return nil, fmt.Errorf("content violation: %s %s ", filePath, result.PromptFeedback.BlockReasonMessage)
	}

	var inputTokenCount int32
	var outputTokenCount int32
	var totalTokenCount int32
	if result.UsageMetadata != nil {
		inputTokenCount = result.UsageMetadata.PromptTokenCount
		outputTokenCount = result.UsageMetadata.CandidatesTokenCount
		totalTokenCount = result.UsageMetadata.TotalTokenCount
		fmt.Println("Input token count:", inputTokenCount)
		fmt.Println("Output token count:", outputTokenCount)
		fmt.Println("Total token count:", totalTokenCount)
	} else {
		fmt.Println("UsageMetadata is nil!")
	}

	var classification ClassificationResult
	if err := json.Unmarshal([]byte(result.Text()), &classification); err != nil {
		fmt.Println("Error parsing classification JSON:", err)
		return nil, fmt.Errorf("error parsing classification response: %v", err)
	}
	classification.InputTokenCount = inputTokenCount
	classification.OutputTokenCount = outputTokenCount
	classification.TotalTokenCount = totalTokenCount

	return &classification, nil
}

// EmbedClothing turns the classified item description into a vector used for
// seed similarity during outfit search.
func (GoogleLLMStylistProcessor) EmbedClothing(ctx context.Context, description string) ([]float64, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  os.Getenv("GOOGLE_API_KEY"),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating genai client: %v", err)
	}

	contents := []*genai.Content{{Parts: []*genai.Part{{Text: description}}}}
	result, err := client.Models.EmbedContent(ctx, embeddingModelName, contents, &genai.EmbedContentConfig{
		OutputDimensionality: Int32Pointer(512),
	})
	if err != nil {
		fmt.Println("Error in EmbedContent:", err)
		return nil, fmt.Errorf("%v", err)
	}
	if len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("empty embedding response for description")
	}

	values := result.Embeddings[0].Values
	vector := make([]float64, len(values))
	for i, v := range values {
		vector[i] = float64(v)
	}
	return vector, nil
}

// DescribeForEmbedding builds the text fed to the embedding model.
func DescribeForEmbedding(c *ClassificationResult) string {
	return fmt.Sprintf("%s %s in %s, %s pattern, %s %s wear, %s fit, tags: %s",
		c.Subcategory, c.Category, c.PrimaryColor, c.Pattern, c.Occasion, c.Tradition, c.Fit,
		strings.Join(c.StyleTags, ", "))
}
