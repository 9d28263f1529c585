package service

import (
	"context"
	"fmt"
	"time"

	"medml-backend/internal/domain"
	"medml-backend/internal/repository"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ReportService exports one patient's record as an xlsx workbook with
// demographics, latest assessments and the full risk history.
type ReportService struct {
	patients    repository.PatientsRepository
	assessments repository.AssessmentsRepository
	predictions repository.PredictionsRepository
	logger      *zap.Logger
}

func NewReportService(
	patients repository.PatientsRepository,
	assessments repository.AssessmentsRepository,
	predictions repository.PredictionsRepository,
	logger *zap.Logger,
) *ReportService {
	return &ReportService{
		patients:    patients,
		assessments: assessments,
		predictions: predictions,
		logger:      logger,
	}
}

// GenerateReport returns the workbook bytes and a suggested filename.
func (s *ReportService) GenerateReport(ctx context.Context, patientID string) ([]byte, string, error) {
	patient, err := s.patients.GetPatient(ctx, patientID)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := s.writePatientSheet(f, patient); err != nil {
		return nil, "", err
	}
	if err := s.writeAssessmentsSheet(ctx, f, patientID); err != nil {
		return nil, "", err
	}
	if err := s.writeRiskHistorySheet(ctx, f, patientID); err != nil {
		return nil, "", err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to write workbook: %w", err)
	}
	filename := fmt.Sprintf("patient_report_%s_%s.xlsx",
		patient.AbhaID, time.Now().UTC().Format("20060102"))
	s.logger.Info("patient report generated",
		zap.String("patient_id", patientID),
		zap.Int("bytes", buf.Len()))
	return buf.Bytes(), filename, nil
}

func (s *ReportService) writePatientSheet(f *excelize.File, p *domain.Patient) error {
	const sheet = "Patient"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	rows := [][]any{
		{"Full Name", p.FullName},
		{"ABHA ID", p.AbhaID},
		{"Age", p.Age},
		{"Gender", p.Gender},
		{"Height (cm)", p.HeightCM},
		{"Weight (kg)", p.WeightKG},
		{"State", p.StateName},
		{"Registered", p.CreatedAt.Format("2006-01-02")},
	}
	if bmi := p.BMI(); bmi != nil {
		rows = append(rows, []any{"BMI", *bmi})
	} else {
		rows = append(rows, []any{"BMI", "n/a"})
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheet, "A", "B", 24)
}

func (s *ReportService) writeAssessmentsSheet(ctx context.Context, f *excelize.File, patientID string) error {
	const sheet = "Latest Assessments"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	rows := [][]any{{"Type", "Field", "Value", "Assessed At"}}

	diabetes, err := s.assessments.LatestDiabetes(ctx, patientID)
	if err != nil {
		return err
	}
	if diabetes != nil {
		at := diabetes.AssessedAt.Format(time.RFC3339)
		rows = append(rows,
			[]any{"Diabetes", "Pregnancies", diabetes.Pregnancies, at},
			[]any{"Diabetes", "Glucose", diabetes.Glucose, at},
			[]any{"Diabetes", "Blood Pressure", diabetes.BloodPressure, at},
			[]any{"Diabetes", "Skin Thickness", diabetes.SkinThickness, at},
			[]any{"Diabetes", "Insulin", diabetes.Insulin, at},
			[]any{"Diabetes", "Family History", diabetes.DiabetesHistory, at},
		)
	}

	liver, err := s.assessments.LatestLiver(ctx, patientID)
	if err != nil {
		return err
	}
	if liver != nil {
		at := liver.AssessedAt.Format(time.RFC3339)
		rows = append(rows,
			[]any{"Liver", "Total Bilirubin", liver.TotalBilirubin, at},
			[]any{"Liver", "Direct Bilirubin", liver.DirectBilirubin, at},
			[]any{"Liver", "Alkaline Phosphotase", liver.AlkalinePhosphotase, at},
			[]any{"Liver", "ALT", liver.AlamineAminotransferase, at},
			[]any{"Liver", "AST", liver.AspartateAminotransferase, at},
			[]any{"Liver", "Total Proteins", liver.TotalProteins, at},
			[]any{"Liver", "Albumin", liver.Albumin, at},
			[]any{"Liver", "A/G Ratio", liver.AGRatio(), at},
		)
	}

	heart, err := s.assessments.LatestHeart(ctx, patientID)
	if err != nil {
		return err
	}
	if heart != nil {
		at := heart.AssessedAt.Format(time.RFC3339)
		rows = append(rows,
			[]any{"Heart", "Systolic BP", heart.SystolicBP, at},
			[]any{"Heart", "Diastolic BP", heart.DiastolicBP, at},
			[]any{"Heart", "Cholesterol", heart.Cholesterol, at},
			[]any{"Heart", "HDL", heart.HDL, at},
			[]any{"Heart", "LDL", heart.LDL, at},
			[]any{"Heart", "Triglycerides", heart.Triglycerides, at},
			[]any{"Heart", "Smoker", heart.Smoker, at},
			[]any{"Heart", "Family History", heart.FamilyHistory, at},
			[]any{"Heart", "Stress Level", heart.StressLevel, at},
			[]any{"Heart", "Diet Quality", heart.DietQuality, at},
		)
	}

	mental, err := s.assessments.LatestMentalHealth(ctx, patientID)
	if err != nil {
		return err
	}
	if mental != nil {
		at := mental.AssessedAt.Format(time.RFC3339)
		rows = append(rows,
			[]any{"Mental Health", "PHQ-9", mental.PHQScore, at},
			[]any{"Mental Health", "GAD-7", mental.GADScore, at},
			[]any{"Mental Health", "Sleep Quality", mental.SleepQuality, at},
			[]any{"Mental Health", "Prior Diagnosis", mental.PriorDiagnosis, at},
			[]any{"Mental Health", "On Medication", mental.OnMedication, at},
		)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheet, "A", "D", 22)
}

func (s *ReportService) writeRiskHistorySheet(ctx context.Context, f *excelize.File, patientID string) error {
	const sheet = "Risk History"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	rows := [][]any{{
		"Predicted At", "Model Version",
		"Diabetes Score", "Diabetes Level",
		"Liver Score", "Liver Level",
		"Heart Score", "Heart Level",
		"Mental Health Score", "Mental Health Level",
	}}

	history, err := s.predictions.ListPredictions(ctx, patientID)
	if err != nil {
		return err
	}
	for _, p := range history {
		row := []any{p.PredictedAt.Format(time.RFC3339), p.ModelVersion}
		for _, d := range domain.Diseases {
			res := p.Result(d)
			if res.Score != nil {
				row = append(row, *res.Score)
			} else {
				row = append(row, "")
			}
			if res.Level != nil {
				row = append(row, *res.Level)
			} else {
				row = append(row, "")
			}
		}
		rows = append(rows, row)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheet, "A", "J", 18)
}
