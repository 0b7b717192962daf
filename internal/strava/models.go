package strava

import "time"

type Athlete struct {
	ID            int64  `json:"id"`
	Firstname     string `json:"firstname"`
	Lastname      string `json:"lastname"`
	Profile       string `json:"profile"`
	ProfileMedium string `json:"profile_medium"`
	City          string `json:"city"`
	State         string `json:"state"`
	Country       string `json:"country"`
}

type Activity struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	Type               string    `json:"type"`
	SportType          string    `json:"sport_type"`
	StartDate          time.Time `json:"start_date"`
	StartDateLocal     time.Time `json:"start_date_local"`
	Distance           float64   `json:"distance"`
	MovingTime         int64     `json:"moving_time"`
	ElapsedTime        int64     `json:"elapsed_time"`
	TotalElevationGain float64   `json:"total_elevation_gain"`
	AverageSpeed       float64   `json:"average_speed"`
	MaxSpeed           float64   `json:"max_speed"`
	AverageHeartrate   float64   `json:"average_heartrate,omitempty"`
	MaxHeartrate       float64   `json:"max_heartrate,omitempty"`
	AverageCadence     float64   `json:"average_cadence,omitempty"`
	KudosCount         int       `json:"kudos_count"`
	CommentCount       int       `json:"comment_count"`
}

type ActivityDetail struct {
	Activity
	Timezone     string  `json:"timezone,omitempty"`
	Description  string  `json:"description,omitempty"`
	Calories     float64 `json:"calories,omitempty"`
	SplitsMetric []Split `json:"splits_metric,omitempty"`
	Laps         []Lap   `json:"laps,omitempty"`
}

type Split struct {
	Split               int     `json:"split"`
	Distance            float64 `json:"distance"`
	ElapsedTime         int64   `json:"elapsed_time"`
	MovingTime          int64   `json:"moving_time"`
	AverageSpeed        float64 `json:"average_speed"`
	ElevationDifference float64 `json:"elevation_difference"`
	AverageHeartrate    float64 `json:"average_heartrate,omitempty"`
}

type Lap struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	LapIndex         int     `json:"lap_index"`
	Distance         float64 `json:"distance"`
	ElapsedTime      int64   `json:"elapsed_time"`
	MovingTime       int64   `json:"moving_time"`
	AverageSpeed     float64 `json:"average_speed"`
	MaxSpeed         float64 `json:"max_speed"`
	AverageHeartrate float64 `json:"average_heartrate,omitempty"`
	MaxHeartrate     float64 `json:"max_heartrate,omitempty"`
}

type ActivityTotals struct {
	Count         int     `json:"count"`
	Distance      float64 `json:"distance"`
	MovingTime    int64   `json:"moving_time"`
	ElapsedTime   int64   `json:"elapsed_time"`
	ElevationGain float64 `json:"elevation_gain"`
}

type AthleteStats struct {
	BiggestRideDistance       float64        `json:"biggest_ride_distance"`
	BiggestClimbElevationGain float64        `json:"biggest_climb_elevation_gain"`
	RecentRideTotals          ActivityTotals `json:"recent_ride_totals"`
	RecentRunTotals           ActivityTotals `json:"recent_run_totals"`
	RecentSwimTotals          ActivityTotals `json:"recent_swim_totals"`
	YTDRideTotals             ActivityTotals `json:"ytd_ride_totals"`
	YTDRunTotals              ActivityTotals `json:"ytd_run_totals"`
	YTDSwimTotals             ActivityTotals `json:"ytd_swim_totals"`
	AllRideTotals             ActivityTotals `json:"all_ride_totals"`
	AllRunTotals              ActivityTotals `json:"all_run_totals"`
	AllSwimTotals             ActivityTotals `json:"all_swim_totals"`
}

type AuthStatus struct {
	Authenticated    bool     `json:"authenticated"`
	StravaConnected  bool     `json:"strava_connected"`
	Message          string   `json:"message"`
	RefreshAvailable bool     `json:"refresh_available,omitempty"`
	AthleteName      string   `json:"athlete_name,omitempty"`
	Athlete          *Athlete `json:"athlete,omitempty"`
}

type AuthURL struct {
	AuthURL string `json:"auth_url"`
	State   string `json:"state"`
}

type Token struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresAt    int64    `json:"expires_at"`
	Athlete      *Athlete `json:"athlete,omitempty"`
}
