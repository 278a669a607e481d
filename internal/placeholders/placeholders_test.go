package placeholders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-diarias/internal/anexo"
	"github.com/a3tai/mcp-diarias/internal/config"
)

func boolPtr(b bool) *bool { return &b }

// Monday 2024-03-11 outbound, requested 2024-02-01 without tickets
func validAnexo1() anexo.Anexo1 {
	return anexo.Anexo1{
		RequestType: anexo.RequestPerDiem,
		RequestDate: "2024-02-01",
		Servant: anexo.Servant{
			FullName:  "Maria José da Silva",
			CPF:       "12345678909",
			BirthDate: "1980-04-05",
			Siape:     "1234567",
			Bank:      anexo.BankDetails{Bank: "001", Agency: "1234-5", Account: "98765-0"},
		},
		TravelReason: "Congresso",
		Itinerary: anexo.Itinerary{
			Outbound: anexo.Legs{
				{Origin: "Bananeiras", Destination: "João Pessoa", DateTime: "2024-03-11T06:00"},
				{Origin: "João Pessoa", Destination: "Recife", DateTime: "2024-03-11T09:00"},
			},
			Return: anexo.Legs{
				{Origin: "Recife", Destination: "Bananeiras", DateTime: "2024-03-14T18:30"},
			},
		},
		Mission:   anexo.Mission{Start: "2024-03-11T14:00", End: "2024-03-13T17:00"},
		Funding:   anexo.Funding{Type: "projeto", Detail: " Extensão "},
		Transport: anexo.Transport{Means: []string{anexo.TransportAirline, anexo.TransportOfficialVehicle}},
		Justifications: anexo.Justifications{
			OutOfDeadline:  "Convite tardio",
			WeekendHoliday: "Não se aplica",
		},
	}
}

func TestBuildAnexo1(t *testing.T) {
	m := BuildAnexo1(validAnexo1(), Anexo1Flags{})

	assert.Equal(t, "01/02/2024", m["data_solicitacao"])
	assert.Equal(t, "X", m["chk_diarias"])
	assert.Equal(t, "", m["chk_passagens"])
	assert.Equal(t, "05/04/1980", m["data_nascimento"])
	assert.Equal(t, "001", m["banco"])
	assert.Equal(t, "", m["rg"])

	assert.Equal(t, "Bananeiras\nJoão Pessoa", m["ida_origem"])
	assert.Equal(t, "João Pessoa\nRecife", m["ida_destino"])
	assert.Equal(t, "11/03/2024 06:00\n11/03/2024 09:00", m["ida_data_hora"])
	assert.Equal(t, "14/03/2024 18:30", m["retorno_data_hora"])
	assert.Equal(t, "11/03/2024 14:00", m["missao_inicio_data_hora"])

	assert.Equal(t, "", m["chk_recurso_cchsa"])
	assert.Equal(t, "X", m["chk_recurso_projeto"])
	assert.Equal(t, "Extensão", m["recurso_projeto"])
	assert.Equal(t, "", m["recurso_outros"])

	assert.Equal(t, "X", m["chk_transporte_empresa_aerea"])
	assert.Equal(t, "X", m["chk_transporte_veiculo_oficial"])
	assert.Equal(t, "", m["chk_transporte_veiculo_proprio"])

	// justifications supplied but not required stay out
	assert.Equal(t, "", m["justificativa_fora_prazo"])
	assert.Equal(t, "", m["justificativa_fds_feriado_dia_anterior"])
}

func TestBuildAnexo1_FlagsReleaseJustifications(t *testing.T) {
	m := BuildAnexo1(validAnexo1(), Anexo1Flags{OutOfDeadline: true, WeekendHoliday: true})

	assert.Equal(t, "Convite tardio", m["justificativa_fora_prazo"])
	assert.Equal(t, "Não se aplica", m["justificativa_fds_feriado_dia_anterior"])
}

func TestBuildAnexo1_EmptyPayloadHasOnlyStrings(t *testing.T) {
	m := BuildAnexo1(anexo.Anexo1{}, Anexo1Flags{})

	require.NotEmpty(t, m)
	for k, v := range m {
		assert.Empty(t, v, k)
	}
	assert.Contains(t, m, "ida_origem")
	assert.Contains(t, m, "retorno_data_hora")
}

func TestBuildAnexo2(t *testing.T) {
	p := anexo.Anexo2{
		ReportDate: "2024-03-20",
		Proposer: anexo.Proposer{
			Name:  "Maria",
			CPF:   "12345678909",
			Organ: anexo.Funding{Type: "outros", Detail: "PRPG"},
		},
		Absence: anexo.Itinerary{
			Outbound: anexo.Legs{{Origin: "A", Destination: "B", DateTime: "2024-03-10T08:00"}},
			Return:   anexo.Legs{{Origin: "B", Destination: "A", DateTime: "bad"}},
		},
		Activities:        "Apresentação",
		LateJustification: "Atraso do voo",
		TripCompleted:     anexo.TripDone,
	}

	m := BuildAnexo2(p, Anexo2Flags{})

	assert.Equal(t, "20/03/2024", m["data_relatorio"])
	assert.Equal(t, "X", m["chk_orgao_outros"])
	assert.Equal(t, "PRPG", m["orgao_outros"])
	assert.Equal(t, "", m["orgao_projetos"])
	assert.Equal(t, "10/03/2024 08:00", m["ida_data_hora"])
	assert.Equal(t, "", m["retorno_data_hora"])
	assert.Equal(t, "X", m["chk_viagem_realizada_sim"])
	assert.Equal(t, "", m["chk_viagem_realizada_nao"])
	assert.Equal(t, "", m["justificativa_prestacao_contas_fora_prazo"])

	m = BuildAnexo2(p, Anexo2Flags{LateAccounting: true})
	assert.Equal(t, "Atraso do voo", m["justificativa_prestacao_contas_fora_prazo"])
}

func TestBuildAnexo2_ProjectCodeFromEitherForm(t *testing.T) {
	for _, code := range []string{"projetos", "projeto"} {
		p := anexo.Anexo2{Proposer: anexo.Proposer{Organ: anexo.Funding{Type: code, Detail: "X1"}}}
		m := BuildAnexo2(p, Anexo2Flags{})
		assert.Equal(t, "X", m["chk_orgao_projetos"], code)
		assert.Equal(t, "X1", m["orgao_projetos"], code)
	}
}

func TestBuildRows(t *testing.T) {
	rows := BuildRows(validAnexo1().Itinerary)

	require.Len(t, rows[DirOutbound], 2)
	assert.Equal(t, map[string]string{
		"ida_origem":    "João Pessoa",
		"ida_destino":   "Recife",
		"ida_data_hora": "11/03/2024 09:00",
	}, rows[DirOutbound][1])
	require.Len(t, rows[DirReturn], 1)
	assert.Equal(t, "Recife", rows[DirReturn][0]["retorno_origem"])

	empty := BuildRows(anexo.Itinerary{})
	assert.Empty(t, empty[DirOutbound])
	assert.Empty(t, empty[DirReturn])
}

func TestDeriveAnexo1Flags(t *testing.T) {
	d := config.DefaultDeadlines()

	tests := []struct {
		name        string
		mutate      func(*anexo.Anexo1)
		wantLate    bool
		wantWeekend bool
	}{
		{"in time on a weekday", func(*anexo.Anexo1) {}, false, false},
		{"exactly at the limit", func(p *anexo.Anexo1) { p.RequestDate = "2024-03-01" }, false, false},
		{"one day late", func(p *anexo.Anexo1) { p.RequestDate = "2024-03-02" }, true, false},
		{"tickets use the longer window", func(p *anexo.Anexo1) {
			p.RequestType = anexo.RequestPerDiemAndTickets
			p.RequestDate = "2024-02-15"
		}, true, false},
		{"saturday departure", func(p *anexo.Anexo1) {
			p.Itinerary.Outbound[0].DateTime = "2024-03-09T07:00"
		}, false, true},
		{"caller weekend flag kept", func(p *anexo.Anexo1) {
			p.Flags.WeekendHoliday = boolPtr(true)
		}, false, true},
		{"caller deadline flag recomputed", func(p *anexo.Anexo1) {
			p.Flags.OutOfDeadline = boolPtr(true)
		}, false, false},
		{"no outbound keeps caller flags", func(p *anexo.Anexo1) {
			p.Itinerary.Outbound = nil
			p.Flags.OutOfDeadline = boolPtr(true)
		}, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validAnexo1()
			tt.mutate(&p)
			f := DeriveAnexo1Flags(p, d)
			assert.Equal(t, tt.wantLate, f.OutOfDeadline)
			assert.Equal(t, tt.wantWeekend, f.WeekendHoliday)
		})
	}
}

func TestDeriveAnexo2Flags(t *testing.T) {
	d := config.DefaultDeadlines()
	p := anexo.Anexo2{
		Absence: anexo.Itinerary{Return: anexo.Legs{{DateTime: "2024-03-14T18:30"}}},
	}

	p.ReportDate = "2024-03-19"
	assert.False(t, DeriveAnexo2Flags(p, d).LateAccounting)

	p.ReportDate = "2024-03-20"
	assert.True(t, DeriveAnexo2Flags(p, d).LateAccounting)

	p.ReportDate = ""
	p.Flags.LateAccounting = boolPtr(true)
	assert.True(t, DeriveAnexo2Flags(p, d).LateAccounting)
}

func TestPrepareAnexo1_OK(t *testing.T) {
	res := PrepareAnexo1(validAnexo1(), config.DefaultDeadlines())

	require.True(t, res.OK, "%v", res.Errors)
	assert.Empty(t, res.Errors)
	assert.Equal(t, Anexo1Flags{}, res.Flags)
	assert.Equal(t, "Maria José da Silva", res.Placeholders["nome_completo"])
	assert.Len(t, res.Rows[DirOutbound], 2)
}

func TestPrepareAnexo1_Errors(t *testing.T) {
	p := validAnexo1()
	p.RequestType = "hospedagem"
	p.RequestDate = "2024-03-05"
	p.Justifications = anexo.Justifications{}
	p.Itinerary.Return = anexo.Legs{{Origin: "Recife", DateTime: "2024-03-01T10:00"}}
	p.Mission.End = "2024-03-20T10:00"

	res := PrepareAnexo1(p, config.DefaultDeadlines())

	assert.False(t, res.OK)
	assert.Nil(t, res.Placeholders)
	assert.Nil(t, res.Rows)

	var fields []string
	for _, e := range res.Errors {
		fields = append(fields, e.Field)
	}
	assert.Equal(t, []string{
		"tipo_solicitacao",
		"trechos",
		"missao",
		"justificativas.justificativa_fora_prazo",
	}, fields)
	assert.Equal(t, Anexo1Flags{OutOfDeadline: true}, res.Flags)
}

func TestPrepareAnexo1_MissingLegsAndMission(t *testing.T) {
	p := validAnexo1()
	p.Itinerary = anexo.Itinerary{Outbound: anexo.Legs{{Origin: "A"}}}
	p.Mission = anexo.Mission{}

	res := PrepareAnexo1(p, config.DefaultDeadlines())

	require.False(t, res.OK)
	var messages []string
	for _, e := range res.Errors {
		messages = append(messages, e.Message)
	}
	assert.Equal(t, []string{
		"Informe ao menos um trecho de retorno.",
		"Informe datas/horas válidas para todos os trechos de ida.",
		"Informe datas/horas válidas para os trechos de ida e retorno.",
		"Informe datas/horas válidas para o período da missão.",
	}, messages)
}

func TestPrepareAnexo2(t *testing.T) {
	p := anexo.Anexo2{
		ReportDate: "2024-03-25",
		Proposer:   anexo.Proposer{Name: "Maria"},
		Absence: anexo.Itinerary{
			Outbound: anexo.Legs{{Origin: "A", Destination: "B", DateTime: "2024-03-10T08:00"}},
			Return:   anexo.Legs{{Origin: "B", Destination: "A", DateTime: "2024-03-14T18:30"}},
		},
		TripCompleted: anexo.TripDone,
	}

	res := PrepareAnexo2(p, config.DefaultDeadlines())
	require.False(t, res.OK)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "justificativa_prestacao_contas_fora_prazo", res.Errors[0].Field)

	p.LateJustification = "Atraso na emissão dos comprovantes"
	res = PrepareAnexo2(p, config.DefaultDeadlines())
	require.True(t, res.OK)
	assert.Equal(t, Anexo2Flags{LateAccounting: true}, res.Flags)
	assert.Equal(t, "Atraso na emissão dos comprovantes", res.Placeholders["justificativa_prestacao_contas_fora_prazo"])
}

func TestPrepareAnexo2_ReturnBeforeOutbound(t *testing.T) {
	p := anexo.Anexo2{
		Absence: anexo.Itinerary{
			Outbound: anexo.Legs{{DateTime: "2024-03-10T08:00"}},
			Return:   anexo.Legs{{DateTime: "2024-03-09T08:00"}},
		},
	}

	res := PrepareAnexo2(p, config.DefaultDeadlines())
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "A data/hora de retorno não pode ser anterior à ida.", res.Errors[0].Message)
}
