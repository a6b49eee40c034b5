package model

// 土壤柱的分层设定
// 1. 6 层土壤，层厚单位 mm
// 2. 每层等距放置 NodesPerLayer 个热计算节点
// 3. 焓 (J/m3) 是唯一需要持久化的状态

const (
	NSoilLayer  = 6
	BottomLayer = NSoilLayer - 1

	DayLength = 86400.0 // s

	Epsilon = 1.0e-6
)

// DefaultSoilDepth holds the layer thicknesses (mm) from top to bottom.
var DefaultSoilDepth = [NSoilLayer]float64{200, 300, 500, 1000, 1000, 10000}

// 物性常数
const (
	CWater     = 4.2e6    // J/m3/K
	CIce       = 2.1e6    // J/m3/K
	CMineral   = 1.9259e6 // J/m3/K, de Vries 1963
	CWater2Ice = 0.3e9    // J/m3, latent heat of fusion per volume of water

	LambdaSnow              = 0.2
	SnowHeightPerWaterDepth = 4.0 // snow height per water height, used for insulation only

	KLitterDry           = 0.05
	KLitterSatFrozen     = 2.106374
	KLitterSatUnfrozen   = 0.554636
	PorosityLitter       = 0.952
	DryBulkDensityLitter = 71.1 // kg/m3
)

// 气体扩散常数
const (
	WO2        = 32.0      // g/mol
	WCH4       = 16.0      // g/mol
	RGas       = 8.314     // J/mol/K
	PSurface   = 1.01e5    // Pa
	DO2Air     = 1.82e-5   // m2/s, Massman 1998
	DO2Water   = 1.6e-9    // m2/s
	DCH4Air    = 1.952e-5  // m2/s
	DCH4Water  = 2e-9      // m2/s
	Tortuosity = 2.0 / 3.0 // eta
	O2Share    = 0.2095    // atmospheric oxygen content
	KelvinZero = 273.15
	BunsenO2   = 0.031 // solubility of oxygen in water
	BunsenCH4  = 0.026 // solubility of methane in water
	PCH4Init   = 1.8   // ppm, atmospheric methane assumed before the first forcing
)
