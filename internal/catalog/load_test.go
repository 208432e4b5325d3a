package catalog

import (
	"errors"
	"strings"
	"testing"
)

const header = ",track_id,artists,album_name,track_name,popularity,duration_ms,explicit,danceability,energy,key,loudness,mode,speechiness,acousticness,instrumentalness,liveness,valence,tempo,time_signature,track_genre"

func TestLoadCSV(t *testing.T) {
	input := header + "\n" +
		"0,5SuOikwiRyPMVoIQDJUgSV,Gen Hoshino,Comedy,Comedy,73,230666,False,0.676,0.461,1,-6.746,0,0.143,0.0322,1.01e-06,0.358,0.715,87.917,4,acoustic\n" +
		"1,4qPNDBW1i3p13qLCt0Ki3A,Ben Woodward,Ghost (Acoustic),Ghost - Acoustic,55,149610,False,0.42,0.166,1,-17.235,1,0.0763,0.924,5.56e-06,0.101,0.267,77.489,4,acoustic\n"

	c, err := LoadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}

	it, ok := c.Item("5SuOikwiRyPMVoIQDJUgSV")
	if !ok {
		t.Fatal("item not found by id")
	}
	if it.Name != "Comedy" || it.Artist != "Gen Hoshino" || it.Category != "acoustic" {
		t.Errorf("unexpected metadata: %+v", it)
	}
	if it.Feature(Danceability) != 0.676 {
		t.Errorf("danceability = %v, want 0.676", it.Feature(Danceability))
	}
	if it.Feature(Tempo) != 87.917 {
		t.Errorf("tempo = %v, want 87.917", it.Feature(Tempo))
	}

	avg := c.Averages()
	if got, want := avg[Energy], (0.461+0.166)/2; abs(got-want) > 1e-9 {
		t.Errorf("average energy = %v, want %v", got, want)
	}
}

func TestLoadCSV_Errors(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantErr    error
		wantLine   int
		wantColumn string
	}{
		{
			name:    "empty input",
			input:   "",
			wantErr: ErrEmptyCatalog,
		},
		{
			name:    "header only",
			input:   header + "\n",
			wantErr: ErrEmptyCatalog,
		},
		{
			name:    "missing tempo column",
			input:   "track_id,artists,track_name,danceability,energy,speechiness,acousticness,instrumentalness,liveness,valence,track_genre\n",
			wantErr: ErrMissingColumn,
		},
		{
			name: "non-numeric feature",
			input: header + "\n" +
				"0,a,X,A,N,1,1,False,high,0.5,1,-6,0,0.1,0.1,0.1,0.1,0.5,120,4,pop\n",
			wantLine:   2,
			wantColumn: "danceability",
		},
		{
			name: "unit feature out of range",
			input: header + "\n" +
				"0,a,X,A,N,1,1,False,0.5,0.5,1,-6,0,0.1,0.1,0.1,0.1,0.5,120,4,pop\n" +
				"1,b,X,A,N,1,1,False,0.5,1.5,1,-6,0,0.1,0.1,0.1,0.1,0.5,120,4,pop\n",
			wantLine:   3,
			wantColumn: "energy",
		},
		{
			name: "short row",
			input: header + "\n" +
				"0,a,X,A,N,1,1,False,0.5\n",
			wantLine: 2,
		},
		{
			name: "empty id",
			input: header + "\n" +
				"0, ,X,A,N,1,1,False,0.5,0.5,1,-6,0,0.1,0.1,0.1,0.1,0.5,120,4,pop\n",
			wantLine:   2,
			wantColumn: "track_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCSV(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}

			var rowErr *MalformedRowError
			if !errors.As(err, &rowErr) {
				t.Fatalf("error = %v, want *MalformedRowError", err)
			}
			if rowErr.Line != tt.wantLine {
				t.Errorf("Line = %d, want %d", rowErr.Line, tt.wantLine)
			}
			if rowErr.Column != tt.wantColumn {
				t.Errorf("Column = %q, want %q", rowErr.Column, tt.wantColumn)
			}
		})
	}
}

func TestLoadCSV_SkipsBlankLines(t *testing.T) {
	input := header + "\n" +
		"0,a,X,A,N,1,1,False,0.5,0.5,1,-6,0,0.1,0.1,0.1,0.1,0.5,120,4,pop\n" +
		",,,,,,,,,,,,,,,,,,,,\n" +
		"1,b,X,A,N,1,1,False,0.5,0.5,1,-6,0,0.1,0.1,0.1,0.1,0.5,120,4,pop\n"

	c, err := LoadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
