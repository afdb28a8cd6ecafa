package statement

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mshaim001-hue/ikap2/internal/extractor"
	"github.com/mshaim001-hue/ikap2/internal/logger"
	"github.com/mshaim001-hue/ikap2/internal/models"
	"github.com/mshaim001-hue/ikap2/internal/parser"
	"github.com/mshaim001-hue/ikap2/internal/workbook"
)

// ExtractionMethod is recorded in every result's metadata.
const ExtractionMethod = "adobe_pdf_services_api"

// ErrEmptyDocument is returned for zero-length input.
var ErrEmptyDocument = errors.New("empty PDF document")

// Converter turns PDF bytes into xlsx bytes.
type Converter interface {
	Convert(ctx context.Context, pdf []byte, filename string) ([]byte, error)
}

// MetadataFunc reads statement details from the PDF itself.
type MetadataFunc func(pdf []byte) (map[string]string, error)

// Processor runs the full pipeline for one statement: conversion, workbook
// reading, metadata and credit-row extraction.
type Processor struct {
	Converter Converter
	Metadata  MetadataFunc
	Engine    *parser.Engine
	Logger    zerolog.Logger
}

// New returns a Processor that reads metadata from the first PDF page.
func New(conv Converter, log zerolog.Logger) *Processor {
	return &Processor{
		Converter: conv,
		Metadata:  FirstPageMetadata,
		Engine:    parser.NewEngine(log),
		Logger:    log,
	}
}

// FirstPageMetadata extracts metadata from the text of the first page.
func FirstPageMetadata(pdf []byte) (map[string]string, error) {
	text, err := extractor.FirstPageText(pdf)
	if err != nil {
		return nil, err
	}
	return extractor.ExtractMetadata(text), nil
}

// Extract processes an unnamed statement.
func (p *Processor) Extract(ctx context.Context, pdf []byte, bankName string) (*models.StatementExtraction, error) {
	return p.ExtractNamed(ctx, "", pdf, bankName)
}

// ExtractNamed processes a statement whose original file name is known. The
// name is passed to the conversion service and used for the workbook name.
func (p *Processor) ExtractNamed(ctx context.Context, filename string, pdf []byte, bankName string) (*models.StatementExtraction, error) {
	if len(pdf) == 0 {
		return nil, ErrEmptyDocument
	}
	log := logger.WithFields(p.Logger, map[string]interface{}{"file": filename, "bank": bankName})

	xlsx, err := p.Converter.Convert(ctx, pdf, filename)
	if err != nil {
		return nil, fmt.Errorf("converting %q: %w", filename, err)
	}

	sheets, err := workbook.ReadSheets(xlsx)
	if err != nil {
		return nil, fmt.Errorf("reading converted workbook: %w", err)
	}
	log.Debug().Int("sheets", len(sheets)).Msg("workbook read")

	result := &models.StatementExtraction{
		BankName:     bankName,
		Metadata:     p.metadata(log, pdf, bankName),
		Tables:       []models.ProcessedTable{},
		Workbook:     xlsx,
		WorkbookName: workbook.NameFor(filename),
	}

	for _, sheet := range sheets {
		tables, err := p.processSheet(sheet, bankName)
		if err != nil {
			log.Warn().Err(err).Str("sheet", sheet.Name).Msg("sheet skipped")
			continue
		}
		result.Tables = append(result.Tables, tables...)
	}

	log.Info().
		Int("tables", len(result.Tables)).
		Int("rows", result.TotalRows()).
		Msg("statement processed")
	return result, nil
}

func (p *Processor) metadata(log zerolog.Logger, pdf []byte, bankName string) map[string]string {
	meta := map[string]string{}
	if p.Metadata != nil {
		found, err := p.Metadata(pdf)
		if err != nil {
			log.Warn().Err(err).Msg("metadata extraction failed")
		}
		for k, v := range found {
			meta[k] = v
		}
	}
	if bankName != "" {
		meta["bank_name"] = bankName
	}
	meta["extraction_method"] = ExtractionMethod
	return meta
}

// processSheet isolates a panic in one sheet from the rest of the document.
func (p *Processor) processSheet(sheet models.RawSheet, bankName string) (tables []models.ProcessedTable, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("processing sheet %q: %v", sheet.Name, r)
		}
	}()
	return p.Engine.ProcessSheet(sheet, bankName), nil
}

// MergeTables flattens tables into one list of rows in table order.
func MergeTables(tables []models.ProcessedTable) []models.FlatRow {
	var rows []models.FlatRow
	for _, t := range tables {
		for _, rec := range t.Rows {
			rows = append(rows, models.FlatRow{
				PageNumber: t.PageNumber,
				BankName:   t.BankName,
				Values:     rec,
			})
		}
	}
	return rows
}
