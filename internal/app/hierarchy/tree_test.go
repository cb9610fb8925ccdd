package hierarchy

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcelojr/evoto/internal/domain"
)

func pai(id domain.GeoNodeID) *domain.GeoNodeID { return &id }

// fixtureNodes monta Kerala com dois distritos e os dois ramos de constituintes.
func fixtureNodes() []domain.GeoNode {
	return []domain.GeoNode{
		{ID: "S1", Level: domain.LevelState, Name: "Kerala"},
		{ID: "D2", Level: domain.LevelDistrict, Name: "Thrissur", ParentID: pai("S1")},
		{ID: "D1", Level: domain.LevelDistrict, Name: "Ernakulam", ParentID: pai("S1")},
		{ID: "LS1", Level: domain.LevelLokSabha, Name: "Chalakudy", ParentID: pai("S1")},
		{ID: "LS2", Level: domain.LevelLokSabha, Name: "Ernakulam LS", ParentID: pai("S1")},
		{ID: "VS1", Level: domain.LevelVidhanSabha, Name: "Kochi", ParentID: pai("D1")},
		{ID: "LB1", Level: domain.LevelLocalBody, Name: "Kochi Corporation", ParentID: pai("D1")},
		{ID: "LB2", Level: domain.LevelLocalBody, Name: "Aluva", ParentID: pai("D1")},
		{ID: "W1", Level: domain.LevelWard, Name: "Fort Kochi", ParentID: pai("LB1")},
		{ID: "B1", Level: domain.LevelBooth, Name: "Booth 1", ParentID: pai("W1")},
	}
}

func fixtureTree(t *testing.T) *Tree {
	tree, err := NewTree(fixtureNodes())
	require.NoError(t, err)
	return tree
}

func eleitorConsistente() domain.Voter {
	return domain.Voter{
		ID: "V1", BoothID: "B1", WardID: "W1", LocalBodyID: "LB1", DistrictID: "D1",
		StateID: "S1", LokSabhaID: "LS2", VidhanSabhaID: "VS1", Status: domain.VoterActive,
	}
}

func TestNewTree_QuandoPaiDeNivelErrado_DeveRejeitar(t *testing.T) {
	nodes := append(fixtureNodes(), domain.GeoNode{ID: "W9", Level: domain.LevelWard, Name: "x", ParentID: pai("D1")})

	_, err := NewTree(nodes)

	assert.ErrorIs(t, err, domain.ErrInconsistentHierarchy)
}

func TestNewTree_QuandoPaiAusente_DeveRejeitar(t *testing.T) {
	nodes := append(fixtureNodes(), domain.GeoNode{ID: "B9", Level: domain.LevelBooth, Name: "x", ParentID: pai("W404")})

	_, err := NewTree(nodes)

	assert.ErrorIs(t, err, domain.ErrInconsistentHierarchy)
}

func TestNewTree_QuandoEstadoTemPai_DeveRejeitar(t *testing.T) {
	_, err := NewTree([]domain.GeoNode{
		{ID: "S1", Level: domain.LevelState, Name: "A", ParentID: pai("S2")},
		{ID: "S2", Level: domain.LevelState, Name: "B"},
	})

	assert.ErrorIs(t, err, domain.ErrInconsistentHierarchy)
}

func TestNewTree_QuandoCicloOuDuplicado_DeveRejeitar(t *testing.T) {
	_, err := NewTree([]domain.GeoNode{
		{ID: "LB1", Level: domain.LevelLocalBody, Name: "a", ParentID: pai("W1")},
		{ID: "W1", Level: domain.LevelWard, Name: "b", ParentID: pai("LB1")},
	})
	assert.ErrorIs(t, err, domain.ErrInconsistentHierarchy)

	_, err = NewTree([]domain.GeoNode{
		{ID: "S1", Level: domain.LevelState, Name: "a"},
		{ID: "S1", Level: domain.LevelState, Name: "b"},
	})
	assert.ErrorIs(t, err, domain.ErrInconsistentHierarchy)

	_, err = NewTree([]domain.GeoNode{{ID: "X", Level: "Country", Name: "x"}})
	assert.ErrorIs(t, err, domain.ErrInvalidNode)
}

func TestTree_Children_DeveOrdenarPorNome(t *testing.T) {
	tree := fixtureTree(t)

	distritos := tree.Children("S1", domain.LevelDistrict)
	require.Len(t, distritos, 2)
	assert.Equal(t, "Ernakulam", distritos[0].Name)
	assert.Equal(t, "Thrissur", distritos[1].Name)

	locais := tree.Children("D1", domain.LevelLocalBody)
	require.Len(t, locais, 2)
	assert.Equal(t, domain.GeoNodeID("LB2"), locais[0].ID)

	raizes := tree.Children("", domain.LevelState)
	require.Len(t, raizes, 1)
	assert.Equal(t, domain.GeoNodeID("S1"), raizes[0].ID)

	assert.Empty(t, tree.Children("S1", domain.LevelWard))
}

func TestTree_Children_NaoDeveExporEstadoInterno(t *testing.T) {
	tree := fixtureTree(t)

	lista := tree.Children("S1", domain.LevelDistrict)
	lista[0].Name = "alterado"

	assert.Equal(t, "Ernakulam", tree.Children("S1", domain.LevelDistrict)[0].Name)
}

func TestTree_AncestorAt_DeveSubirPelaCadeia(t *testing.T) {
	tree := fixtureTree(t)

	lb, err := tree.AncestorAt("B1", domain.LevelLocalBody)
	require.NoError(t, err)
	assert.Equal(t, domain.GeoNodeID("LB1"), lb.ID)

	estado, err := tree.AncestorAt("B1", domain.LevelState)
	require.NoError(t, err)
	assert.Equal(t, domain.GeoNodeID("S1"), estado.ID)

	proprio, err := tree.AncestorAt("W1", domain.LevelWard)
	require.NoError(t, err)
	assert.Equal(t, domain.GeoNodeID("W1"), proprio.ID)
}

func TestTree_AncestorAt_QuandoRamoIndependente_DeveRetornarNotFound(t *testing.T) {
	tree := fixtureTree(t)

	_, err := tree.AncestorAt("W1", domain.LevelLokSabha)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = tree.AncestorAt("nao-existe", domain.LevelState)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTree_ValidateVoter_QuandoCadeiaConsistente_DeveAceitar(t *testing.T) {
	tree := fixtureTree(t)

	assert.NoError(t, tree.ValidateVoter(eleitorConsistente()))
	assert.NoError(t, tree.ValidateVoter(domain.Voter{ID: "V2", VidhanSabhaID: "VS1", DistrictID: "D1", StateID: "S1"}))
	assert.NoError(t, tree.ValidateVoter(domain.Voter{ID: "V3", StateID: "S1"}))
}

func TestTree_ValidateVoter_QuandoCadeiaDiverge_DeveRejeitar(t *testing.T) {
	tree := fixtureTree(t)

	casos := map[string]func(v *domain.Voter){
		"ward de outro local body": func(v *domain.Voter) { v.LocalBodyID = "LB2" },
		"distrito trocado":         func(v *domain.Voter) { v.DistrictID = "D2"; v.BoothID = ""; v.WardID = ""; v.LocalBodyID = "" },
		"nivel errado no campo":    func(v *domain.Voter) { v.LokSabhaID = "VS1" },
		"booth sem ward e local body de outro ramo": func(v *domain.Voter) {
			v.WardID = ""
			v.LocalBodyID = "LB2"
		},
		"booth sem ward":            func(v *domain.Voter) { v.WardID = "" },
		"lok sabha sem estado":      func(v *domain.Voter) { v.StateID = "" },
		"vidhan sabha sem distrito": func(v *domain.Voter) { v.DistrictID = ""; v.BoothID = ""; v.WardID = ""; v.LocalBodyID = "" },
	}
	for nome, mutar := range casos {
		t.Run(nome, func(t *testing.T) {
			v := eleitorConsistente()
			mutar(&v)
			assert.ErrorIs(t, tree.ValidateVoter(v), domain.ErrInconsistentHierarchy)
		})
	}

	v := eleitorConsistente()
	v.BoothID = "B404"
	assert.ErrorIs(t, tree.ValidateVoter(v), domain.ErrNotFound)

	soLokSabha := domain.Voter{ID: "V9", LokSabhaID: "LS2"}
	assert.ErrorIs(t, tree.ValidateVoter(soLokSabha), domain.ErrInconsistentHierarchy)
}

func TestTree_ValidateElectionTarget_DeveConferirNivelPorTipo(t *testing.T) {
	tree := fixtureTree(t)

	assert.NoError(t, tree.ValidateElectionTarget(domain.Election{Type: domain.ElectionLokSabha, TargetNodeID: "LS1"}))
	assert.NoError(t, tree.ValidateElectionTarget(domain.Election{Type: domain.ElectionPanchayat, TargetNodeID: "LB2"}))

	assert.ErrorIs(t, tree.ValidateElectionTarget(domain.Election{Type: domain.ElectionLokSabha, TargetNodeID: "VS1"}), domain.ErrInvalidElection)
	assert.ErrorIs(t, tree.ValidateElectionTarget(domain.Election{Type: domain.ElectionVidhanSabha, TargetNodeID: "nada"}), domain.ErrInvalidElection)
	assert.ErrorIs(t, tree.ValidateElectionTarget(domain.Election{Type: "Municipal", TargetNodeID: "LB1"}), domain.ErrInvalidElection)
}

type geoRepoFake struct {
	nodes []domain.GeoNode
	err   error
}

func (f *geoRepoFake) ListAll(context.Context) ([]domain.GeoNode, error) { return f.nodes, f.err }
func (f *geoRepoFake) Upsert(context.Context, []domain.GeoNode) error    { return nil }

func TestService_Reload_DeveTrocarSnapshot(t *testing.T) {
	repo := &geoRepoFake{nodes: fixtureNodes()}
	svc := NewService(repo)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Ready(ctx), ErrNotLoaded)
	assert.Empty(t, svc.Children("S1", domain.LevelDistrict))

	require.NoError(t, svc.Reload(ctx))

	assert.NoError(t, svc.Ready(ctx))
	assert.Len(t, svc.Children("S1", domain.LevelDistrict), 2)
	antes := svc.Current()

	repo.nodes = fixtureNodes()[:1]
	require.NoError(t, svc.Reload(ctx))

	assert.Equal(t, 1, svc.Current().Len())
	assert.Equal(t, 10, antes.Len())
}

func TestService_Reload_QuandoArvoreInvalida_DeveManterAnterior(t *testing.T) {
	repo := &geoRepoFake{nodes: fixtureNodes()}
	svc := NewService(repo)
	ctx := context.Background()
	require.NoError(t, svc.Reload(ctx))

	repo.nodes = []domain.GeoNode{{ID: "W1", Level: domain.LevelWard, Name: "orfa"}}
	assert.ErrorIs(t, svc.Reload(ctx), domain.ErrInconsistentHierarchy)

	repo.err = errors.New("banco fora")
	assert.Error(t, svc.Reload(ctx))

	assert.Equal(t, 10, svc.Current().Len())
}
