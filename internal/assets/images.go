package assets

import (
	"context"
	"fmt"
	"strings"

	"reelforge/internal/logging"
	"reelforge/internal/media"
	"reelforge/internal/reeljob"
	"reelforge/internal/services"
)

const (
	sourceRegenerated = "regenerated"
	roleCTA           = "cta"
)

// strictPrompt forbids rendered text so captions stay the only copy on screen.
func strictPrompt(seg reeljob.Segment) string {
	var b strings.Builder
	if style := strings.TrimSpace(seg.VisualStyle); style != "" {
		fmt.Fprintf(&b, "Style: %s. ", style)
	}
	b.WriteString(strings.TrimSpace(seg.ImagePrompt))
	b.WriteString(". Ensure the image contains NO text, NO letters, NO words, NO signage, and NO watermarks. Purely visual composition.")
	return b.String()
}

// resolveVisuals fills ImageURL for every segment, in order.
func (s *Service) resolveVisuals(ctx context.Context, jobID string, segments []reeljob.Segment, resolution media.Resolution) ([]reeljob.Segment, error) {
	out := make([]reeljob.Segment, len(segments))
	copy(out, segments)
	for i := range out {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		assignment := resolution.At(i)
		var err error
		if assignment.Generate() {
			err = s.generateVisual(ctx, jobID, &out[i], assignment, len(out))
		} else {
			err = s.adoptVisual(ctx, jobID, &out[i], assignment)
		}
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// adoptVisual copies a user or scraped image into storage. A source that
// no longer exists is replaced with a generated image.
func (s *Service) adoptVisual(ctx context.Context, jobID string, seg *reeljob.Segment, assignment media.Assignment) error {
	logger := logging.WithContext(ctx, s.logger)
	seg.ImageURL = assignment.URL
	seg.ImageSource = string(assignment.Provenance)
	if s.storage == nil || s.durable(assignment.URL) {
		return nil
	}
	upload, err := s.storage.UploadImage(ctx, assignment.URL, UploadOptions{
		Folder:   s.folder("images", jobID),
		PublicID: fmt.Sprintf("seg_%d_%d", seg.Index, s.now().Unix()),
	})
	if err == nil {
		seg.ImageURL = upload.URL
		return nil
	}
	if !services.IsNotFound(err) {
		logging.WarnWithContext(logger, "visual upload failed; using source url", "image_upload_failed",
			logging.Int("segment", seg.Index),
			logging.String("source_url", assignment.URL),
			logging.Error(err),
			logging.String(logging.FieldImpact, "segment references a non-durable url"),
		)
		return nil
	}

	logging.WarnWithContext(logger, "visual source is gone; regenerating", "image_source_missing",
		logging.Int("segment", seg.Index),
		logging.String("source_url", assignment.URL),
		logging.String(logging.FieldErrorHint, "the page that supplied this image may have changed"),
	)
	s.setStep(ctx, jobID, fmt.Sprintf("Fixing broken visual %d with AI...", seg.Index+1))
	generator := s.fallbackImage
	if generator == nil {
		generator = s.images
	}
	image, err := generator.GenerateImage(ctx, seg.ImagePrompt)
	if err != nil {
		logging.WarnWithContext(logger, "visual regeneration failed; using source url", "image_regenerate_failed",
			logging.Int("segment", seg.Index),
			logging.Error(err),
			logging.String(logging.FieldImpact, "segment references a missing image"),
		)
		return nil
	}
	seg.ImageURL = image.URL
	seg.ImageSource = sourceRegenerated
	upload, err = s.storage.UploadImage(ctx, image.URL, UploadOptions{
		Folder:   s.folder("images", jobID),
		PublicID: fmt.Sprintf("seg_%d_retry_%d", seg.Index, s.now().Unix()),
	})
	if err != nil {
		logging.WarnWithContext(logger, "regenerated visual upload failed", "image_upload_failed",
			logging.Int("segment", seg.Index),
			logging.Error(err),
			logging.String(logging.FieldImpact, "segment references the generator url"),
		)
		return nil
	}
	seg.ImageURL = upload.URL
	return nil
}

func (s *Service) generateVisual(ctx context.Context, jobID string, seg *reeljob.Segment, assignment media.Assignment, total int) error {
	s.setStep(ctx, jobID, fmt.Sprintf("Creating visual %d of %d (AI)...", seg.Index+1, total))

	image, err := s.generate(ctx, strictPrompt(*seg), seg.ImagePrompt)
	if err != nil {
		return services.Wrap(services.ErrExternalService, "images", "generate visual",
			fmt.Sprintf("segment %d could not be generated", seg.Index+1), err)
	}
	seg.ImageURL = image.URL
	seg.ImageSource = string(media.ProvenanceGenerated)

	s.storeGenerated(ctx, jobID, seg)
	if strings.EqualFold(assignment.Scene.Role, roleCTA) && s.verifier != nil {
		s.verifyCTA(ctx, seg)
	}
	return nil
}

// storeGenerated moves a generated visual into storage. Failures keep the
// generator url.
func (s *Service) storeGenerated(ctx context.Context, jobID string, seg *reeljob.Segment) {
	if s.storage == nil || s.durable(seg.ImageURL) {
		return
	}
	upload, err := s.storage.UploadImage(ctx, seg.ImageURL, UploadOptions{
		Folder:   s.folder("images", jobID),
		PublicID: fmt.Sprintf("seg_%d_%d", seg.Index, s.now().Unix()),
	})
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, s.logger), "generated visual upload failed", "image_upload_failed",
			logging.Int("segment", seg.Index),
			logging.Error(err),
			logging.String(logging.FieldImpact, "segment references the generator url"),
		)
		return
	}
	seg.ImageURL = upload.URL
}

// generate tries the primary generator with the strict prompt, then the
// fallback with the original prompt.
func (s *Service) generate(ctx context.Context, strict, original string) (Image, error) {
	if s.images == nil {
		return s.fallbackImage.GenerateImage(ctx, original)
	}
	image, err := s.images.GenerateImage(ctx, strict)
	if err == nil || s.fallbackImage == nil {
		return image, err
	}
	logging.WarnWithContext(logging.WithContext(ctx, s.logger), "primary image generation failed; using fallback", "image_fallback",
		logging.Error(err),
		logging.String(logging.FieldImpact, "visual comes from the fallback generator"),
	)
	return s.fallbackImage.GenerateImage(ctx, original)
}

func (s *Service) verifyCTA(ctx context.Context, seg *reeljob.Segment) {
	logger := logging.WithContext(ctx, s.logger)
	verdict, err := s.verifier.VerifyImageContent(ctx, seg.ImageURL, VerifyOptions{MustBeTextFree: true})
	if err != nil {
		logging.WarnWithContext(logger, "cta visual verification failed", "image_verify_failed",
			logging.Int("segment", seg.Index),
			logging.Error(err),
		)
		return
	}
	if verdict.IsValid {
		logger.Debug("cta visual verified", logging.Int("segment", seg.Index))
		return
	}
	logging.WarnWithContext(logger, "cta visual contains text", "image_verify_rejected",
		logging.Int("segment", seg.Index),
		logging.Any("issues", verdict.Issues),
		logging.Any("detected_text", verdict.DetectedText),
		logging.String(logging.FieldImpact, "visual kept; captions may overlap rendered text"),
	)
}
