package cluster

// Kind names a clustering strategy.
type Kind string

const (
	KindDensity  Kind = "density"
	KindCentroid Kind = "centroid"
	KindMixture  Kind = "mixture"
)

// Engine is a clustering strategy with a uniform fit contract. The three
// implementations are DensityBased, Centroid and Mixture; callers pick one
// explicitly.
type Engine interface {
	Kind() Kind
	Fit(ds *Dataset) (*Result, error)
}

// DensityBased runs HDBSCAN.
type DensityBased struct{ Config HDBSCANConfig }

// Centroid runs k-means.
type Centroid struct{ Config KMeansConfig }

// Mixture runs the Gaussian mixture engine.
type Mixture struct{ Config GMMConfig }

var (
	_ Engine = DensityBased{}
	_ Engine = Centroid{}
	_ Engine = Mixture{}
)

func (DensityBased) Kind() Kind { return KindDensity }

func (e DensityBased) Fit(ds *Dataset) (*Result, error) {
	res, err := HDBSCANDataset(ds, e.Config)
	if err != nil {
		return nil, err
	}
	return &res.Result, nil
}

func (Centroid) Kind() Kind { return KindCentroid }

func (e Centroid) Fit(ds *Dataset) (*Result, error) {
	res, err := KMeansDataset(ds, e.Config)
	if err != nil {
		return nil, err
	}
	return &res.Result, nil
}

func (Mixture) Kind() Kind { return KindMixture }

func (e Mixture) Fit(ds *Dataset) (*Result, error) {
	res, err := GMMDataset(ds, e.Config)
	if err != nil {
		return nil, err
	}
	return &res.Result, nil
}
