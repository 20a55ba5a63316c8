package models

import "strings"

// Column headers of the Events sheet. The record store is keyed by these names,
// so they must match the spreadsheet header row exactly.
const (
	ColEventID               = "Event ID"
	ColUserEmail             = "User Email"
	ColAcademicYear          = "Academic Year"
	ColQuarter               = "Quarter"
	ColProgramName           = "Program Name"
	ColProgramType           = "Program Type"
	ColProgramDrivenBy       = "Program Driven By"
	ColActivityLedBy         = "Activity Led By"
	ColProgramTheme          = "Program Theme"
	ColOrganizingDepartments = "Organizing Departments"
	ColSDGGoals              = "SDG Goals"
	ColProgramOutcomes       = "Program Outcomes"
	ColDurationHrs           = "Duration (Hrs)"
	ColEventLevel            = "Event Level"
	ColModeOfDelivery        = "Mode of Delivery"
	ColStartDate             = "Start Date"
	ColEndDate               = "End Date"
	ColStudentParticipants   = "Student Participants"
	ColFacultyParticipants   = "Faculty Participants"
	ColExternalParticipants  = "External Participants"
	ColExpenditureAmount     = "Expenditure Amount"
	ColObjective             = "Objective"
	ColBenefits              = "Benefits"
	ColSpeakerNames          = "Speaker Names"
	ColSpeakerDesignation    = "Speaker Designation"
	ColSpeakerOrganization   = "Speaker Organization"
	ColVideoURL              = "Session Video URL"
	ColBriefReport           = "Brief Report"

	ColGeotagPhoto1 = "Geotag_Photo1_ID"
	ColGeotagPhoto2 = "Geotag_Photo2_ID"
	ColGeotagPhoto3 = "Geotag_Photo3_ID"
	ColNormalPhoto1 = "Normal_Photo1_ID"
	ColNormalPhoto2 = "Normal_Photo2_ID"
	ColNormalPhoto3 = "Normal_Photo3_ID"

	ColAttendanceReport  = "Attendance_Report_ID"
	ColFeedbackAnalysis  = "Feedback_Analysis_ID"
	ColEventAgenda       = "Event_Agenda_ID"
	ColChiefGuestBiodata = "Chief_Guest_Biodata_ID"
	ColKPIReport         = "KPI_Report_ID"

	ColGeneratedPDFID       = "Generated_PDF_ID"
	ColSignedPDFID          = "Signed_PDF_ID"
	ColAdminApprovalStatus  = "Admin_Approval_Status"
	ColDriveFolderURL       = "Drive Folder URL"
	legacyVideoURLColHeader = "Video URL"
)

// EventRecord is one submitted activity as stored in the Events sheet.
// Every field defaults to the empty string; the renderer decides how an empty
// value is displayed. Reference fields hold either "" or an opaque Drive file
// ID / sharing URL.
type EventRecord struct {
	EventID               string
	UserEmail             string
	AcademicYear          string
	Quarter               string
	ProgramName           string
	ProgramType           string
	ProgramDrivenBy       string
	ActivityLedBy         string
	ProgramTheme          string
	OrganizingDepartments string
	SDGGoals              string
	ProgramOutcomes       string
	DurationHrs           string
	EventLevel            string
	ModeOfDelivery        string
	StartDate             string
	EndDate               string
	StudentParticipants   string
	FacultyParticipants   string
	ExternalParticipants  string
	ExpenditureAmount     string
	Objective             string
	Benefits              string
	SpeakerNames          string
	SpeakerDesignation    string
	SpeakerOrganization   string
	VideoURL              string
	BriefReport           string

	Photos    PhotoRefs
	Documents DocumentRefs

	GeneratedPDFID string
	SignedPDFID    string
	DriveFolderURL string
}

// PhotoRefs are the six photo reference fields, in annexure order.
type PhotoRefs struct {
	Geotag1 string
	Geotag2 string
	Geotag3 string
	Normal1 string
	Normal2 string
	Normal3 string
}

// DocumentRefs are the supporting-document reference fields merged as annexures.
type DocumentRefs struct {
	AttendanceReport  string
	FeedbackAnalysis  string
	EventAgenda       string
	ChiefGuestBiodata string
	KPIReport         string
}

// EventRecordFromRow builds a record from a header->value mapping.
// Unknown columns are ignored and missing columns leave the field empty.
func EventRecordFromRow(row map[string]string) *EventRecord {
	get := func(key string) string {
		return strings.TrimSpace(row[key])
	}
	rec := &EventRecord{
		EventID:               get(ColEventID),
		UserEmail:             get(ColUserEmail),
		AcademicYear:          get(ColAcademicYear),
		Quarter:               get(ColQuarter),
		ProgramName:           get(ColProgramName),
		ProgramType:           get(ColProgramType),
		ProgramDrivenBy:       get(ColProgramDrivenBy),
		ActivityLedBy:         get(ColActivityLedBy),
		ProgramTheme:          get(ColProgramTheme),
		OrganizingDepartments: get(ColOrganizingDepartments),
		SDGGoals:              get(ColSDGGoals),
		ProgramOutcomes:       get(ColProgramOutcomes),
		DurationHrs:           get(ColDurationHrs),
		EventLevel:            get(ColEventLevel),
		ModeOfDelivery:        get(ColModeOfDelivery),
		StartDate:             get(ColStartDate),
		EndDate:               get(ColEndDate),
		StudentParticipants:   get(ColStudentParticipants),
		FacultyParticipants:   get(ColFacultyParticipants),
		ExternalParticipants:  get(ColExternalParticipants),
		ExpenditureAmount:     get(ColExpenditureAmount),
		Objective:             get(ColObjective),
		Benefits:              get(ColBenefits),
		SpeakerNames:          get(ColSpeakerNames),
		SpeakerDesignation:    get(ColSpeakerDesignation),
		SpeakerOrganization:   get(ColSpeakerOrganization),
		VideoURL:              get(ColVideoURL),
		// Brief report keeps its inner whitespace; paragraphs are split on blank lines.
		BriefReport: row[ColBriefReport],
		Photos: PhotoRefs{
			Geotag1: get(ColGeotagPhoto1),
			Geotag2: get(ColGeotagPhoto2),
			Geotag3: get(ColGeotagPhoto3),
			Normal1: get(ColNormalPhoto1),
			Normal2: get(ColNormalPhoto2),
			Normal3: get(ColNormalPhoto3),
		},
		Documents: DocumentRefs{
			AttendanceReport:  get(ColAttendanceReport),
			FeedbackAnalysis:  get(ColFeedbackAnalysis),
			EventAgenda:       get(ColEventAgenda),
			ChiefGuestBiodata: get(ColChiefGuestBiodata),
			KPIReport:         get(ColKPIReport),
		},
		GeneratedPDFID: get(ColGeneratedPDFID),
		SignedPDFID:    get(ColSignedPDFID),
		DriveFolderURL: get(ColDriveFolderURL),
	}
	if rec.VideoURL == "" {
		rec.VideoURL = get(legacyVideoURLColHeader)
	}
	return rec
}

// IsBlankReference reports whether a reference field holds no file.
// The sheet stores the literal "null" for cleared uploads.
func IsBlankReference(ref string) bool {
	ref = strings.TrimSpace(ref)
	return ref == "" || strings.EqualFold(ref, "null")
}
