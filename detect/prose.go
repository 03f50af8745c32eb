package detect

import (
	"context"
	"fmt"
	"os"

	"github.com/jdkato/prose/v2"

	apperrors "corpus-prep/errors"
)

// ProseRecognizer tags entities with prose's averaged-perceptron NER model.
// The model is loaded once in NewProseRecognizer and only read afterwards.
type ProseRecognizer struct {
	model *prose.Model
}

// NewProseRecognizer loads a model from modelDir, or prose's bundled model
// when modelDir is empty.
func NewProseRecognizer(modelDir string) (rec *ProseRecognizer, err error) {
	// prose panics on unreadable model files
	defer func() {
		if r := recover(); r != nil {
			rec = nil
			err = apperrors.WrapErrorf(apperrors.ErrRecognizerUnavailable, "load prose model: %v", r)
		}
	}()

	if modelDir == "" {
		// an empty document still decodes the bundled tagger and NER model
		doc, docErr := prose.NewDocument("", prose.WithSegmentation(false))
		if docErr != nil {
			return nil, apperrors.WrapErrorf(apperrors.ErrRecognizerUnavailable, "load bundled model: %v", docErr)
		}
		if doc.Model == nil {
			return nil, apperrors.WrapError(apperrors.ErrRecognizerUnavailable, "bundled model missing")
		}
		return &ProseRecognizer{model: doc.Model}, nil
	}

	info, statErr := os.Stat(modelDir)
	if statErr != nil {
		return nil, apperrors.WrapErrorf(apperrors.ErrRecognizerUnavailable, "model dir %s: %v", modelDir, statErr)
	}
	if !info.IsDir() {
		return nil, apperrors.WrapErrorf(apperrors.ErrRecognizerUnavailable, "model dir %s is not a directory", modelDir)
	}

	return &ProseRecognizer{model: prose.ModelFromDisk(modelDir)}, nil
}

func (p *ProseRecognizer) Recognize(ctx context.Context, text string) ([]Span, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := prose.NewDocument(text, prose.WithSegmentation(false), prose.UsingModel(p.model))
	if err != nil {
		return nil, fmt.Errorf("prose document: %w", err)
	}

	ents := doc.Entities()
	spans := make([]Span, 0, len(ents))
	for _, ent := range ents {
		spans = append(spans, Span{Text: ent.Text, Label: ent.Label})
	}
	return spans, nil
}
