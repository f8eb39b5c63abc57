package escl

import "encoding/xml"

// scannerCapabilities mirrors the subset of the eSCL
// ScannerCapabilities XML document this adapter consumes: the platen's
// color modes, resolutions, and min/max scan region in three-hundredths
// of an inch ("units").
type scannerCapabilities struct {
	XMLName xml.Name `xml:"ScannerCapabilities"`
	Version string   `xml:"Version"`
	MakeAndModel string `xml:"MakeAndModel"`
	Platen  struct {
		PlatenInputCaps struct {
			MinWidth       int              `xml:"MinWidth"`
			MaxWidth       int              `xml:"MaxWidth"`
			MinHeight      int              `xml:"MinHeight"`
			MaxHeight      int              `xml:"MaxHeight"`
			SettingProfiles settingProfiles `xml:"SettingProfiles"`
		} `xml:"PlatenInputCaps"`
	} `xml:"Platen"`
}

type settingProfiles struct {
	SettingProfile []struct {
		ColorModes      []string `xml:"ColorModes>ColorMode"`
		DocumentFormats []string `xml:"DocumentFormats>DocumentFormat"`
		SupportedResolutions struct {
			DiscreteResolutions struct {
				DiscreteResolution []struct {
					XResolution int `xml:"XResolution"`
				} `xml:"DiscreteResolution"`
			} `xml:"DiscreteResolutions"`
		} `xml:"SupportedResolutions"`
	} `xml:"SettingProfile"`
}

// scanSettings is the body of a ScanJobs POST request.
type scanSettings struct {
	XMLName           xml.Name `xml:"ScanSettings"`
	Version           string   `xml:"Version"`
	Intent            string   `xml:"Intent,omitempty"`
	ScanRegions       scanRegions `xml:"ScanRegions"`
	InputSource       string `xml:"InputSource"`
	ColorMode         string `xml:"ColorMode"`
	XResolution       int    `xml:"XResolution"`
	YResolution       int    `xml:"YResolution"`
	DocumentFormatExt string `xml:"DocumentFormatExt,omitempty"`
}

type scanRegions struct {
	ScanRegion struct {
		XOffset      int    `xml:"XOffset"`
		YOffset      int    `xml:"YOffset"`
		Width        int    `xml:"Width"`
		Height       int    `xml:"Height"`
		ContentRegionUnits string `xml:"ContentRegionUnits"`
	} `xml:"ScanRegion"`
}

// scannerStatus mirrors the ScannerStatus XML document: overall device
// state plus, if a job is active, its per-job state.
type scannerStatus struct {
	XMLName xml.Name `xml:"ScannerStatus"`
	State   string   `xml:"State"`
	Jobs    struct {
		JobInfo []struct {
			JobURI   string `xml:"JobUri"`
			JobState string `xml:"JobState"`
		} `xml:"JobInfo"`
	} `xml:"Jobs"`
}

// eSCL job states, per the Scan Job State enumeration.
const (
	jobStateProcessing = "Processing"
	jobStatePending    = "Pending"
	jobStateCompleted  = "Completed"
	jobStateCanceled   = "Canceled"
	jobStateAborted    = "Aborted"
)
